package render

type ListKind int

const (
	ListBulleted ListKind = iota + 1
	ListNumbered
)

func (k ListKind) String() string {
	switch k {
	case ListBulleted:
		return "bulleted"
	case ListNumbered:
		return "numbered"
	default:
		return "none"
	}
}

type listFrame struct {
	kind   ListKind
	number int
	indent int
}

type tableState struct {
	width int
	rows  int
}

// FormatContext is the rendering cursor. Every transition returns a new value;
// the receiver is never modified, so contexts handed to sibling branches never
// share state.
type FormatContext struct {
	indent  int
	lists   []listFrame
	table   tableState
	inTable bool
}

func NewFormatContext() FormatContext {
	return FormatContext{}
}

func (c FormatContext) withLists(lists []listFrame) FormatContext {
	if len(lists) == 0 {
		c.lists = nil
		return c
	}
	cp := make([]listFrame, len(lists))
	copy(cp, lists)
	c.lists = cp
	return c
}

func (c FormatContext) IndentLevel() int { return c.indent }

func (c FormatContext) ListDepth() int { return len(c.lists) }

func (c FormatContext) IsInList() bool { return len(c.lists) > 0 }

func (c FormatContext) IsInBulletedList() bool {
	return len(c.lists) > 0 && c.lists[len(c.lists)-1].kind == ListBulleted
}

func (c FormatContext) IsInNumberedList() bool {
	return len(c.lists) > 0 && c.lists[len(c.lists)-1].kind == ListNumbered
}

func (c FormatContext) EnterList(kind ListKind) FormatContext {
	frame := listFrame{kind: kind, indent: c.indent}
	if kind == ListNumbered {
		frame.number = 1
	}
	return c.withLists(append(c.lists[:len(c.lists):len(c.lists)], frame))
}

func (c FormatContext) EnterBulletedList() FormatContext { return c.EnterList(ListBulleted) }

func (c FormatContext) EnterNumberedList() FormatContext { return c.EnterList(ListNumbered) }

func (c FormatContext) ExitList() FormatContext {
	if len(c.lists) == 0 {
		return c
	}
	return c.withLists(c.lists[:len(c.lists)-1])
}

// CurrentListNumber is the ordinal for the next numbered item, 1 outside a numbered list.
func (c FormatContext) CurrentListNumber() int {
	if !c.IsInNumberedList() {
		return 1
	}
	return c.lists[len(c.lists)-1].number
}

func (c FormatContext) IncrementListNumber() FormatContext {
	if !c.IsInNumberedList() {
		return c
	}
	next := c.withLists(c.lists)
	next.lists[len(next.lists)-1].number++
	return next
}

func (c FormatContext) EnterChildren() FormatContext {
	c.indent++
	return c
}

func (c FormatContext) ExitChildren() FormatContext {
	if c.indent > 0 {
		c.indent--
	}
	return c
}

func (c FormatContext) EnterTable(width int) FormatContext {
	c.table = tableState{width: width}
	c.inTable = true
	return c
}

func (c FormatContext) ExitTable() FormatContext {
	c.table = tableState{}
	c.inTable = false
	return c
}

func (c FormatContext) InTable() bool { return c.inTable }

func (c FormatContext) TableWidth() int { return c.table.width }

func (c FormatContext) IsFirstTableRow() bool { return c.inTable && c.table.rows == 0 }

func (c FormatContext) ProcessTableRow() FormatContext {
	if c.inTable {
		c.table.rows++
	}
	return c
}

// listRunAt reports the kind of the list opened at the current indent, if any.
func (c FormatContext) listRunAt() (ListKind, bool) {
	if len(c.lists) == 0 {
		return 0, false
	}
	top := c.lists[len(c.lists)-1]
	if top.indent != c.indent {
		return 0, false
	}
	return top.kind, true
}
