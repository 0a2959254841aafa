package service

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/tidwall/jsonc"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/capitalize-ai/hr-service-desk/internal/model"
)

// markdown is shared; Parse keeps its state per call.
var markdown = goldmark.New()

// directive is the routing block the conversational agent appends to its reply.
type directive struct {
	RequiresCase bool    `json:"requires_case"`
	CaseType     *string `json:"case_type"`
}

// fencedBlock is a closed fenced code block and its byte span in the reply,
// fences included.
type fencedBlock struct {
	start, end int
	language   string
	body       string
}

// parseDirective splits an agent reply into the text shown to the user and
// its routing directive. The last closed json fenced block is the directive;
// a missing or unreadable block means no case is required.
func parseDirective(reply string) (string, bool, model.IntentType) {
	block, ok := lastDirectiveBlock([]byte(reply))
	if !ok {
		return strings.TrimSpace(reply), false, ""
	}

	visible := joinVisible(reply[:block.start], reply[block.end:])

	var d directive
	if err := json.Unmarshal(jsonc.ToJSON([]byte(block.body)), &d); err != nil {
		return visible, false, ""
	}
	if !d.RequiresCase {
		return visible, false, ""
	}

	caseType := model.IntentGeneralInquiry
	if d.CaseType != nil {
		caseType = model.ParseIntentType(strings.TrimSpace(*d.CaseType))
	}
	return visible, true, caseType
}

func lastDirectiveBlock(source []byte) (fencedBlock, bool) {
	var found fencedBlock
	var ok bool

	document := markdown.Parser().Parse(text.NewReader(source))
	ast.Walk(document, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || node.Kind() != ast.KindFencedCodeBlock {
			return ast.WalkContinue, nil
		}
		block, closed := readFencedBlock(node.(*ast.FencedCodeBlock), source)
		if !closed {
			return ast.WalkSkipChildren, nil
		}
		switch block.language {
		case "", "json", "jsonc":
		default:
			return ast.WalkSkipChildren, nil
		}
		if strings.HasPrefix(strings.TrimSpace(block.body), "{") {
			found, ok = block, true
		}
		return ast.WalkSkipChildren, nil
	})

	return found, ok
}

// readFencedBlock locates the fences around node. A block left open at the
// end of the reply is reported as not closed.
func readFencedBlock(node *ast.FencedCodeBlock, source []byte) (fencedBlock, bool) {
	lines := node.Lines()
	if lines.Len() == 0 {
		return fencedBlock{}, false
	}

	var body strings.Builder
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		body.Write(segment.Value(source))
	}

	var start int
	if node.Info != nil {
		start = lineStart(source, node.Info.Segment.Start)
	} else {
		start = lineStart(source, lines.At(0).Start-1)
	}

	closing := lines.At(lines.Len() - 1).Stop
	if closing < len(source) && source[closing] == '\n' && (closing == 0 || source[closing-1] != '\n') {
		closing++
	}
	if closing >= len(source) {
		return fencedBlock{}, false
	}
	fence := bytes.TrimLeft(source[closing:], " \t")
	if !bytes.HasPrefix(fence, []byte("```")) && !bytes.HasPrefix(fence, []byte("~~~")) {
		return fencedBlock{}, false
	}

	end := len(source)
	if i := bytes.IndexByte(source[closing:], '\n'); i >= 0 {
		end = closing + i + 1
	}

	return fencedBlock{
		start:    start,
		end:      end,
		language: strings.ToLower(string(node.Language(source))),
		body:     body.String(),
	}, true
}

func lineStart(source []byte, pos int) int {
	if pos <= 0 {
		return 0
	}
	return bytes.LastIndexByte(source[:pos], '\n') + 1
}

func joinVisible(head, tail string) string {
	head, tail = strings.TrimSpace(head), strings.TrimSpace(tail)
	switch {
	case tail == "":
		return head
	case head == "":
		return tail
	default:
		return head + "\n\n" + tail
	}
}
