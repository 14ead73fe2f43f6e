package app

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/dshills/quill/internal/composer"
	"github.com/dshills/quill/internal/projection"
)

// handleCommand executes one line of input. Returns ErrQuit when the
// session should end.
func (a *Application) handleCommand(input string) error {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help":
		a.printHelp()

	case "quit", "exit":
		fmt.Fprintln(a.out, "Goodbye!")
		return ErrQuit

	case "type":
		a.show(a.composer.ReplaceText(unescape(strings.Join(args, " "))))

	case "select", "sel":
		a.cmdSelect(args)

	case "enter":
		a.show(a.composer.Enter())

	case "backspace", "bs":
		a.show(a.composer.Backspace())

	case "delete", "del":
		a.show(a.composer.DeleteForward())

	case "bold":
		a.show(a.composer.ToggleFormat(composer.FormatBold))

	case "italic":
		a.show(a.composer.ToggleFormat(composer.FormatItalic))

	case "strike":
		a.show(a.composer.ToggleFormat(composer.FormatStrikeThrough))

	case "underline":
		a.show(a.composer.ToggleFormat(composer.FormatUnderline))

	case "inlinecode":
		a.show(a.composer.ToggleFormat(composer.FormatInlineCode))

	case "link":
		a.cmdLink(args)

	case "unlink":
		a.show(a.composer.RemoveLinks())

	case "mention":
		a.cmdMention(args)

	case "quote":
		a.show(a.composer.ToggleQuote())

	case "ol":
		a.show(a.composer.ToggleOrderedList())

	case "ul":
		a.show(a.composer.ToggleUnorderedList())

	case "codeblock":
		a.show(a.composer.ToggleCodeBlock())

	case "undo":
		a.show(a.composer.Undo())

	case "redo":
		a.show(a.composer.Redo())

	case "clear":
		a.show(a.composer.Clear())

	case "accept":
		a.cmdAccept(args)

	case "expand":
		a.cmdExpand(args)

	case "paste":
		a.cmdPaste(args)

	case "sethtml":
		a.cmdSetHTML(args)

	case "setmd":
		a.cmdSetMarkdown(args)

	case "html":
		fmt.Fprintln(a.out, a.composer.ContentAsHTML())

	case "md":
		fmt.Fprintln(a.out, a.composer.ContentAsMarkdown())

	case "text":
		fmt.Fprintf(a.out, "%q\n", a.composer.ContentAsPlainText())

	case "tree":
		fmt.Fprint(a.out, a.composer.DebugTree())

	case "blocks":
		a.cmdBlocks()

	case "menu":
		a.cmdMenu()

	case "status":
		a.cmdStatus()

	case "rules":
		fmt.Fprintf(a.out, "suggestion rules: %v\n", a.composer.SuggestionRuleNames())

	case "outbound":
		a.cmdOutbound()

	default:
		fmt.Fprintf(a.out, "Unknown command: %s. Type 'help' for available commands.\n", cmd)
	}

	return nil
}

func (a *Application) printHelp() {
	help := `
Available Commands:
-------------------

EDITING:
  type <text>             Replace the selection with text (\n and \t unescape)
  select <anchor> [head]  Move the selection (UTF-16 code unit offsets)
  enter                   Press Enter at the selection
  backspace, bs           Delete backward
  delete, del             Delete forward
  undo, redo              Walk the edit history
  clear                   Empty the document and history

FORMATTING:
  bold | italic | strike | underline | inlinecode
                          Toggle the format over the selection
  link <url> [text]       Link the selection, or insert linked text
  unlink                  Strip links from the selection
  mention <url> <text>    Insert a mention pill
  quote                   Toggle the quote around the selection
  ol | ul                 Toggle ordered / unordered list
  codeblock               Toggle the code block

SUGGESTIONS:
  accept <url> <text>     Turn the pending suggestion into a mention
  expand <text>           Replace the pending suggestion with text
  rules                   List registered suggestion rules

CONTENT:
  paste <html>            Insert sanitized HTML at the selection
  sethtml <html>          Replace the document from HTML
  setmd <markdown>        Replace the document from Markdown
  html | md | text        Print the document in each format
  tree                    Print the document tree
  blocks                  Print the block projection
  menu                    Print the menu state at the selection
  status                  Print length, selection and history state
  outbound                Print pending collaboration ops (CRDT mode)

OTHER:
  help                    Show this help message
  quit, exit              Exit the REPL
`
	fmt.Fprintln(a.out, help)
}

func (a *Application) cmdSelect(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(a.out, "Usage: select <anchor> [head]")
		return
	}
	anchor, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(a.out, "Invalid anchor: %v\n", err)
		return
	}
	head := anchor
	if len(args) > 1 {
		head, err = strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintf(a.out, "Invalid head: %v\n", err)
			return
		}
	}
	a.show(a.composer.Select(anchor, head))
}

func (a *Application) cmdLink(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(a.out, "Usage: link <url> [text]")
		return
	}
	target := args[0]
	if !a.schemeAllowed(target) {
		fmt.Fprintf(a.out, "Refused: scheme of %q is not in linkSchemes %v\n", target, a.Settings().LinkSchemes)
		return
	}
	if len(args) > 1 {
		a.show(a.composer.SetLinkWithText(target, strings.Join(args[1:], " ")))
		return
	}
	a.show(a.composer.SetLink(target))
}

func (a *Application) cmdMention(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(a.out, "Usage: mention <url> <text>")
		return
	}
	target := args[0]
	if !a.hostAllowed(target) {
		fmt.Fprintf(a.out, "Refused: host of %q is not in mentionHosts %v\n", target, a.Settings().MentionHosts)
		return
	}
	a.show(a.composer.InsertMention(target, strings.Join(args[1:], " ")))
}

func (a *Application) cmdAccept(args []string) {
	if a.pattern == nil {
		fmt.Fprintln(a.out, "No pending suggestion")
		return
	}
	if len(args) < 2 {
		fmt.Fprintln(a.out, "Usage: accept <url> <text>")
		return
	}
	target := args[0]
	if !a.hostAllowed(target) {
		fmt.Fprintf(a.out, "Refused: host of %q is not in mentionHosts %v\n", target, a.Settings().MentionHosts)
		return
	}
	a.show(a.composer.InsertMentionAtSuggestion(target, strings.Join(args[1:], " "), *a.pattern))
}

func (a *Application) cmdExpand(args []string) {
	if a.pattern == nil {
		fmt.Fprintln(a.out, "No pending suggestion")
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(a.out, "Usage: expand <text>")
		return
	}
	a.show(a.composer.ReplaceTextSuggestion(unescape(strings.Join(args, " ")), *a.pattern))
}

func (a *Application) cmdPaste(args []string) {
	u, err := a.composer.InsertHTML(strings.Join(args, " "), composer.SourceUnknown)
	if err != nil {
		fmt.Fprintf(a.out, "Paste error: %v\n", err)
		return
	}
	a.show(u)
}

func (a *Application) cmdSetHTML(args []string) {
	u, err := a.composer.SetContentFromHTML(strings.Join(args, " "))
	if err != nil {
		fmt.Fprintf(a.out, "Parse error: %v\n", err)
		return
	}
	a.show(u)
}

func (a *Application) cmdSetMarkdown(args []string) {
	u, err := a.composer.SetContentFromMarkdown(unescape(strings.Join(args, " ")))
	if err != nil {
		fmt.Fprintf(a.out, "Parse error: %v\n", err)
		return
	}
	a.show(u)
}

func (a *Application) cmdBlocks() {
	blocks := a.composer.BlockProjections()
	if len(blocks) == 0 {
		fmt.Fprintln(a.out, "(no blocks)")
		return
	}
	for i, b := range blocks {
		fmt.Fprintf(a.out, "%d: %s [%d, %d)", i, b.Kind, b.Start, b.End)
		if b.InQuote {
			fmt.Fprint(a.out, " in-quote")
		}
		if b.Kind == projection.BlockListItem {
			fmt.Fprintf(a.out, " ordered=%v depth=%d", b.Ordered, b.Depth)
		}
		fmt.Fprintln(a.out)
		for _, run := range b.Runs {
			switch {
			case run.URL != "" && run.Display != "":
				fmt.Fprintf(a.out, "   mention [%d, %d) %q -> %s\n", run.Start, run.End, run.Display, run.URL)
			case run.Text != "":
				fmt.Fprintf(a.out, "   text    [%d, %d) %q\n", run.Start, run.End, run.Text)
			default:
				fmt.Fprintf(a.out, "   break   [%d, %d)\n", run.Start, run.End)
			}
		}
	}
}

func (a *Application) cmdMenu() {
	order := []composer.Action{
		composer.ActionBold, composer.ActionItalic, composer.ActionStrikeThrough,
		composer.ActionUnderline, composer.ActionInlineCode, composer.ActionLink,
		composer.ActionOrderedList, composer.ActionUnorderedList, composer.ActionQuote,
		composer.ActionCodeBlock, composer.ActionMention, composer.ActionUndo,
		composer.ActionRedo, composer.ActionClear,
	}
	for _, act := range order {
		fmt.Fprintf(a.out, "  %-14s %s\n", act, a.menu.Actions[act])
	}
	if a.menu.Link.URL != "" {
		fmt.Fprintf(a.out, "  link action:   %s (%s)\n", a.menu.Link.Kind, a.menu.Link.URL)
	} else {
		fmt.Fprintf(a.out, "  link action:   %s\n", a.menu.Link.Kind)
	}
}

func (a *Application) cmdStatus() {
	sel := a.composer.Selection()
	fmt.Fprintf(a.out, "length:    %d code units\n", a.composer.Len())
	fmt.Fprintf(a.out, "selection: [%d, %d]\n", sel.Anchor, sel.Head)
	fmt.Fprintf(a.out, "undo/redo: %v/%v\n", a.composer.CanUndo(), a.composer.CanRedo())
	fmt.Fprintf(a.out, "replica:   %s\n", a.composer.Replica())
	if a.pattern != nil {
		fmt.Fprintf(a.out, "pending:   %s %q\n", a.pattern.Key, a.pattern.Text)
	}
}

func (a *Application) cmdOutbound() {
	ops, err := a.composer.TakeOutbound()
	if err != nil {
		fmt.Fprintf(a.out, "Outbound error: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "%d pending ops\n", len(ops))
}

// show prints an update and caches its menu and suggestion.
func (a *Application) show(u composer.Update) {
	switch u.Text.Kind {
	case composer.TextReplaceAll:
		fmt.Fprintf(a.out, "content:   %s\n", u.Text.HTML)
		fmt.Fprintf(a.out, "selection: [%d, %d]\n", u.Text.Selection.Anchor, u.Text.Selection.Head)
	case composer.TextSelect:
		fmt.Fprintf(a.out, "selection: [%d, %d]\n", u.Text.Selection.Anchor, u.Text.Selection.Head)
	default:
		fmt.Fprintln(a.out, "(no text change)")
	}
	if u.Action.Kind == composer.MenuActionSuggestion {
		p := u.Action.Suggestion
		fmt.Fprintf(a.out, "suggest:   %s %q covering [%d, %d)\n", p.Key, p.Text, p.Start, p.End)
	}
	a.remember(u)
}

// remember caches menu and suggestion state without printing.
func (a *Application) remember(u composer.Update) {
	a.menu = u.Menu
	if u.Action.Kind == composer.MenuActionSuggestion {
		p := u.Action.Suggestion
		a.pattern = &p
	} else {
		a.pattern = nil
	}
}

func (a *Application) schemeAllowed(target string) bool {
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" {
		return false
	}
	return slices.Contains(a.Settings().LinkSchemes, u.Scheme)
}

func (a *Application) hostAllowed(target string) bool {
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return false
	}
	return slices.Contains(a.Settings().MentionHosts, u.Host)
}

func unescape(s string) string {
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\t`, "\t")
	return s
}
