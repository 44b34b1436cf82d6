package dictionary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

// FileFormat represents the phrase table file formats
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatText               // text<TAB>code<TAB>weight lines
	FormatBinary             // length-prefixed binary records
)

// maxBinaryEntries guards against reading a garbage header
const maxBinaryEntries = 10_000_000

// sniffSize is how much of a text table is checked for UTF-8
const sniffSize = 512

type formatDef struct {
	name       string
	extensions []string
	minSize    int64
	check      func(r io.Reader) error
}

var formats = map[FileFormat]formatDef{
	FormatText:   {"Plain Text Phrase Table", []string{".txt", ".tsv"}, 1, checkText},
	FormatBinary: {"Binary Phrase Table", []string{".bin"}, 4, checkBinaryHeader},
}

func (f FileFormat) String() string {
	if def, ok := formats[f]; ok {
		return def.name
	}
	return "unknown"
}

// ValidateFileFormat checks size, extension and leading content of filename
// against format.
func ValidateFileFormat(filename string, format FileFormat) error {
	def, ok := formats[format]
	if !ok {
		return fmt.Errorf("unknown format: %v", format)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(def.extensions, ext) {
		return fmt.Errorf("%s: extension %q is not a %s (expected %v)", filename, ext, def.name, def.extensions)
	}

	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", filename, err)
	}
	if info.Size() < def.minSize {
		return fmt.Errorf("%s: %d bytes is too small for a %s", filename, info.Size(), def.name)
	}
	if err := def.check(file); err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	return nil
}

func checkText(r io.Reader) error {
	buf := make([]byte, sniffSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return err
	}
	head := buf[:n]
	// a multibyte rune may be cut at the sniff boundary
	for i := 0; i < utf8.UTFMax && len(head) > 0 && !utf8.Valid(head); i++ {
		head = head[:len(head)-1]
	}
	if !utf8.Valid(head) {
		return errors.New("not UTF-8 text")
	}
	return nil
}

func checkBinaryHeader(r io.Reader) error {
	var count int32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	if count < 0 || count > maxBinaryEntries {
		return fmt.Errorf("invalid entry count %d", count)
	}
	log.Debugf("Binary header validated: %d entries", count)
	return nil
}

// DetectFileFormat returns the first format filename validates as.
func DetectFileFormat(filename string) (FileFormat, error) {
	for _, format := range []FileFormat{FormatText, FormatBinary} {
		if err := ValidateFileFormat(filename, format); err == nil {
			return format, nil
		}
	}
	return FormatUnknown, fmt.Errorf("unable to detect format for file %s", filename)
}
