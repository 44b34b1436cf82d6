package dictionary

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// LoaderStats summarizes a load.
type LoaderStats struct {
	Files   int
	Entries int
	Skipped int
}

// Load reads a phrase table from path, a file or a directory of table
// files. It returns ErrEmptyTable if nothing was loaded.
func Load(path string) (*Table, LoaderStats, error) {
	var stats LoaderStats
	info, err := os.Stat(path)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to stat dictionary %s: %w", path, err)
	}

	files := []string{path}
	if info.IsDir() {
		if files, err = tableFiles(path); err != nil {
			return nil, stats, err
		}
	}

	table := NewTable()
	for _, file := range files {
		added, skipped, err := LoadFile(table, file)
		if err != nil {
			return nil, stats, err
		}
		stats.Files++
		stats.Entries += added
		stats.Skipped += skipped
	}

	if table.Len() == 0 {
		return nil, stats, fmt.Errorf("%s: %w", path, ErrEmptyTable)
	}
	log.Debugf("Loaded %d phrases from %d files (%d skipped)", stats.Entries, stats.Files, stats.Skipped)
	return table, stats, nil
}

// tableFiles lists the table files of dir in name order
func tableFiles(dir string) ([]string, error) {
	var files []string
	for _, def := range formats {
		for _, ext := range def.extensions {
			matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
			if err != nil {
				return nil, fmt.Errorf("failed to scan for table files: %w", err)
			}
			files = append(files, matches...)
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// LoadFile adds the phrases of one file to table.
func LoadFile(table *Table, filename string) (added, skipped int, err error) {
	format, err := DetectFileFormat(filename)
	if err != nil {
		return 0, 0, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open table file %s: %w", filename, err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	switch format {
	case FormatBinary:
		added, err = ReadBinary(reader, table)
	default:
		added, skipped, err = ReadText(reader, table)
	}
	if err != nil {
		return added, skipped, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	log.Debugf("Table file %s loaded: %d phrases", filename, added)
	return added, skipped, nil
}

// ParseLine parses "text<TAB>code<TAB>weight". The code lists syllables
// separated by spaces; a missing weight counts as 1.
func ParseLine(line string) (Entry, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 2 {
		return Entry{}, fmt.Errorf("expected text and code, got %d fields", len(fields))
	}
	e := Entry{
		Text:   strings.TrimSpace(fields[0]),
		Code:   strings.Fields(fields[1]),
		Weight: 1,
	}
	if len(fields) > 2 && strings.TrimSpace(fields[2]) != "" {
		w, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil {
			return Entry{}, fmt.Errorf("invalid weight %q: %w", fields[2], err)
		}
		e.Weight = w
	}
	return e, nil
}

// ReadText adds every valid line of r to table. Blank lines and lines
// starting with '#' are ignored; malformed lines are logged and skipped.
func ReadText(r io.Reader, table *Table) (added, skipped int, err error) {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		e, err := ParseLine(line)
		if err == nil {
			err = table.Add(e)
		}
		if err != nil {
			log.Warnf("Skipping line %d: %v", lineNo, err)
			skipped++
			continue
		}
		added++
	}
	if err := scanner.Err(); err != nil {
		return added, skipped, err
	}
	return added, skipped, nil
}

// ReadBinary reads a table written by WriteBinary: an int32 entry count,
// then per entry the uint16-length-prefixed text and code and a float64
// weight, all little endian.
func ReadBinary(r io.Reader, table *Table) (int, error) {
	var count int32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return 0, fmt.Errorf("failed to read table header: %w", err)
	}
	if count < 0 || count > maxBinaryEntries {
		return 0, fmt.Errorf("invalid entry count %d", count)
	}

	added := 0
	for i := 0; i < int(count); i++ {
		text, err := readString(r)
		if err != nil {
			return added, fmt.Errorf("failed to read text of entry %d: %w", i, err)
		}
		code, err := readString(r)
		if err != nil {
			return added, fmt.Errorf("failed to read code of entry %d: %w", i, err)
		}
		var weight float64
		if err := binary.Read(r, binary.LittleEndian, &weight); err != nil {
			return added, fmt.Errorf("failed to read weight of entry %d: %w", i, err)
		}
		if err := table.Add(Entry{Text: text, Code: strings.Fields(code), Weight: weight}); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// WriteBinary writes every phrase of table in the binary format.
func WriteBinary(w io.Writer, table *Table) error {
	entries := table.Entries()
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, int32(len(entries))); err != nil {
		return fmt.Errorf("failed to write table header: %w", err)
	}
	for _, e := range entries {
		if err := writeString(bw, e.Text); err != nil {
			return err
		}
		if err := writeString(bw, strings.Join(e.Code, " ")); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, e.Weight); err != nil {
			return fmt.Errorf("failed to write weight of %q: %w", e.Text, err)
		}
	}
	return bw.Flush()
}

func readString(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeString(w io.Writer, s string) error {
	if len(s) > 0xFFFF {
		return fmt.Errorf("string too long for table record: %d bytes", len(s))
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}
