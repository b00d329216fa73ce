package printers

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/rejonpardenilla/minderal/pkg/cache"
	"github.com/rejonpardenilla/minderal/pkg/node"
	"github.com/rejonpardenilla/minderal/pkg/widget"
)

type PrettyPrint struct {
	ShowID bool
	Out    io.Writer
}

var (
	// uuids are 36 wide.
	spacing = strings.Repeat(" ", len("171dff69-f8b9-4dca-a8c1-5d2f1e0b9c3a  "))
)

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)

	if pp.ShowID {
		_, _ = t.Fprint(pp.out(), spacing)
	}
	_, _ = t.Fprintln(pp.out(), title)
}

// Breadcrumb prints the path root first. An empty path is the root.
func (pp *PrettyPrint) Breadcrumb(path []cache.Crumb) {
	t := color.New(color.Bold, color.Underline)
	f := color.New(color.Faint)

	if pp.ShowID {
		_, _ = t.Fprint(pp.out(), spacing)
	}
	_, _ = t.Fprint(pp.out(), "/")
	for _, c := range path {
		name := c.Name
		if name == "" {
			name = c.ID
		}
		_, _ = f.Fprint(pp.out(), " › ")
		_, _ = t.Fprint(pp.out(), name)
	}
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	if pp.ShowID {
		_, _ = t.Fprint(pp.out(), spacing)
	}
	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " node")
	default:
		_, _ = c.Fprintln(pp.out(), " nodes")
	}
}

// Children prints one line per node in the given order.
func (pp *PrettyPrint) Children(nodes ...node.Node) {
	if len(nodes) == 0 {
		f := color.New(color.Faint, color.Italic)
		if pp.ShowID {
			_, _ = f.Fprint(pp.out(), spacing)
		}
		_, _ = f.Fprint(pp.out(), " empty\n\n")
		return
	}

	for _, n := range nodes {
		pp.Node(n)
	}
	_, _ = fmt.Fprintln(pp.out(), "")
}

// Node prints a single node line.
func (pp *PrettyPrint) Node(n node.Node) {
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	s := color.New(color.FgCyan)

	if pp.ShowID {
		_, _ = y.Fprint(pp.out(), n.ID)
		if pad := len(spacing) - len(n.ID); pad > 0 {
			_, _ = y.Fprint(pp.out(), strings.Repeat(" ", pad))
		} else {
			_, _ = y.Fprint(pp.out(), "  ")
		}
	}
	symbol := "?"
	if w, ok := widget.Lookup(n.Kind()); ok {
		symbol = w.Symbol
	}
	_, _ = s.Fprint(pp.out(), symbol)
	_, _ = fmt.Fprintf(pp.out(), " %s\n", Describe(n.Content()))
}

// Describe renders the content of a node as a single line.
func Describe(c node.Content) string {
	switch c := c.(type) {
	case node.Text:
		return c.Body
	case node.Folder:
		return c.Name + "/"
	case node.Link:
		if c.URL == "" {
			return c.Name
		}
		return fmt.Sprintf("%s → %s", c.Name, c.URL)
	case node.Checkbox:
		return checkbox(c.Checked) + " " + c.Name
	case node.Todo:
		return checkbox(c.Done) + " " + c.Name
	case node.Counter:
		return fmt.Sprintf("%s: %s", c.Name, strconv.FormatFloat(c.Count, 'f', -1, 64))
	case node.Countdown:
		if c.Target == "" {
			return c.Name
		}
		return fmt.Sprintf("%s (until %s)", c.Name, c.Target)
	case node.Audio:
		if c.Source == "" {
			return c.Name
		}
		return fmt.Sprintf("%s <%s>", c.Name, c.Source)
	case nil:
		return ""
	default:
		return c.Label()
	}
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

// JSON writes v indented, followed by a newline.
func (pp *PrettyPrint) JSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(pp.out(), string(b))
	return err
}

// View is the JSON shape of a listing.
type View struct {
	Path     []cache.Crumb `json:"path"`
	Children []node.Record `json:"children"`
}

// NewView converts a snapshot for JSON output.
func NewView(snap cache.Snapshot) View {
	v := View{Path: snap.Path, Children: make([]node.Record, 0, len(snap.Children))}
	if v.Path == nil {
		v.Path = []cache.Crumb{}
	}
	for _, n := range snap.Children {
		v.Children = append(v.Children, n.Record())
	}
	return v
}
