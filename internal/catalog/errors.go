package catalog

import (
	"fmt"
	"strings"
)

// ParseError records one malformed XML element: unknown tag,
// unparseable numeric, unrecognized enum string, or bad time suffix.
// Grounded on fault-injection-library.c:parseFaultFromXML's
// "FIESER: fault %d syntax error: ..." qemu_log calls.
type ParseError struct {
	FaultID int // -1 if the <id> element itself couldn't be parsed
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("fault %d syntax error: %s", e.FaultID, e.Message)
}

// ParseErrors aggregates every ParseError found while walking one XML
// document, so a single bad tag doesn't hide the rest (mirrors the
// original's had_parser_errors counter, which keeps scanning all
// <fault> children before failing the whole load).
type ParseErrors []ParseError

func (e ParseErrors) Error() string {
	msgs := make([]string, len(e))
	for i, pe := range e {
		msgs[i] = pe.Error()
	}
	return fmt.Sprintf("fault parsing from XML failed, %d rule(s) rejected: %s",
		len(e), strings.Join(msgs, "; "))
}

// SemanticError records one validator rule violation.
// Grounded on fault-injection-library.c:validateFaultList's
// "FIESER: fault id %d semantic error: %s" qemu_log calls.
type SemanticError struct {
	FaultID int
	Message string
}

func (e SemanticError) Error() string {
	return fmt.Sprintf("fault id %d semantic error: %s", e.FaultID, e.Message)
}

// SemanticErrors aggregates every SemanticError found validating one
// catalogue.
type SemanticErrors []SemanticError

func (e SemanticErrors) Error() string {
	msgs := make([]string, len(e))
	for i, se := range e {
		msgs[i] = se.Error()
	}
	return fmt.Sprintf("fault definition invalid, %d violation(s): %s",
		len(e), strings.Join(msgs, "; "))
}

// DocumentError records a structural problem with the document itself
// (not parsed, empty, wrong root element).
type DocumentError struct {
	Message string
}

func (e DocumentError) Error() string {
	return e.Message
}
