package candidate

// Simple owns its text, comment and preedit.
type Simple struct {
	Base
	text    string
	comment string
	preedit string
}

// NewSimple returns a simple candidate with zero quality.
func NewSimple(typ string, start, end int, text, comment, preedit string) *Simple {
	return &Simple{
		Base:    NewBase(typ, start, end, 0),
		text:    text,
		comment: comment,
		preedit: preedit,
	}
}

func (c *Simple) Text() string    { return c.text }
func (c *Simple) Comment() string { return c.comment }
func (c *Simple) Preedit() string { return c.preedit }

func (c *Simple) SetText(text string)       { c.text = text }
func (c *Simple) SetComment(comment string) { c.comment = comment }
func (c *Simple) SetPreedit(preedit string) { c.preedit = preedit }

// Shadow delegates to another candidate, overriding whatever of text,
// comment and preedit is set. The shadowed item may be shared.
type Shadow struct {
	Base
	item           Candidate
	text           string
	comment        string
	preedit        string
	inheritComment bool
}

// NewShadow wraps item under typ. Span and quality are copied from item.
// Empty text falls back to the item's; an empty comment falls back only when
// inheritComment is set.
func NewShadow(item Candidate, typ, text, comment string, inheritComment bool) *Shadow {
	return &Shadow{
		Base:           NewBase(typ, item.Start(), item.End(), item.Quality()),
		item:           item,
		text:           text,
		comment:        comment,
		inheritComment: inheritComment,
	}
}

// Item returns the shadowed candidate.
func (c *Shadow) Item() Candidate { return c.item }

func (c *Shadow) Text() string {
	if c.text == "" {
		return c.item.Text()
	}
	return c.text
}

func (c *Shadow) Comment() string {
	if c.inheritComment && c.comment == "" {
		return c.item.Comment()
	}
	return c.comment
}

func (c *Shadow) Preedit() string {
	if c.preedit == "" {
		return c.item.Preedit()
	}
	return c.preedit
}

// SetPreedit overrides the item's preedit.
func (c *Shadow) SetPreedit(preedit string) { c.preedit = preedit }

// Uniquified groups equivalent candidates under the first one appended.
type Uniquified struct {
	Base
	text    string
	comment string
	items   List
}

// NewUniquified starts a group headed by item.
func NewUniquified(item Candidate, typ string) *Uniquified {
	u := &Uniquified{Base: NewBase(typ, item.Start(), item.End(), item.Quality())}
	u.items = List{item}
	return u
}

// Append adds item to the group and raises quality to the item's if higher.
func (c *Uniquified) Append(item Candidate) {
	c.items = append(c.items, item)
	if q := item.Quality(); c.Quality() < q {
		c.SetQuality(q)
	}
}

// Items returns the grouped candidates in the order they were appended.
func (c *Uniquified) Items() List { return c.items }

func (c *Uniquified) Text() string {
	if c.text == "" && len(c.items) > 0 {
		return c.items[0].Text()
	}
	return c.text
}

func (c *Uniquified) Comment() string {
	if c.comment == "" && len(c.items) > 0 {
		return c.items[0].Comment()
	}
	return c.comment
}

func (c *Uniquified) Preedit() string {
	if len(c.items) == 0 {
		return ""
	}
	return c.items[0].Preedit()
}

// SetText overrides the text of the first item.
func (c *Uniquified) SetText(text string) { c.text = text }

// SetComment overrides the comment of the first item.
func (c *Uniquified) SetComment(comment string) { c.comment = comment }
