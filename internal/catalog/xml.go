// Package catalog implements the XML fault-catalogue loader and
// semantic validator.
//
// Grounded on fault-injection-library.c (parseFaultFromXML, parseFile,
// validateFaultList) and fault-injection-controller.c
// (FIESER_normalize_time_to_int64). The original walks a libxml2 DOM
// node by node; encoding/xml's struct-tag decoding is the idiomatic Go
// equivalent and is the standard library's designated tool for this
// (see DESIGN.md for why no third-party XML library is used instead).
package catalog

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dependableDOTspace/fieser/internal/fault"
	"github.com/dependableDOTspace/fieser/internal/vtime"
)

// xmlInjection is the <injection> root element.
type xmlInjection struct {
	XMLName xml.Name   `xml:"injection"`
	Faults  []xmlFault `xml:"fault"`
}

type xmlFault struct {
	ID        *string   `xml:"id"`
	Component *string   `xml:"component"`
	Target    *string   `xml:"target"`
	Mode      *string   `xml:"mode"`
	Trigger   *string   `xml:"trigger"`
	Type      *string   `xml:"type"`
	Timer     *string   `xml:"timer"`
	Duration  *string   `xml:"duration"`
	Interval  *string   `xml:"interval"`
	Params    xmlParams `xml:"params"`
}

type xmlParams struct {
	Address     *string `xml:"address"`
	CFAddress   *string `xml:"cf_address"`
	Mask        *string `xml:"mask"`
	Instruction *string `xml:"instruction"`
	SetBit      *string `xml:"set_bit"`
}

// LoadFile reads and parses the catalogue at path, then validates it.
// On any failure the returned Catalogue is nil; the error is the
// wrapped os.Open error if the file cannot be opened, and otherwise
// one of DocumentError, ParseErrors or SemanticErrors.
func LoadFile(path string) (*fault.Catalogue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses and validates a catalogue document from r.
func Load(r io.Reader) (*fault.Catalogue, error) {
	var doc xmlInjection
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, DocumentError{Message: fmt.Sprintf("document not parsed successfully: %v", err)}
	}

	if len(doc.Faults) == 0 {
		// An <injection> root with no <fault> children parses fine but
		// yields an empty catalogue; that's not forbidden.
		return fault.EmptyCatalogue(), nil
	}

	faults := make([]fault.Fault, 0, len(doc.Faults))
	var parseErrs ParseErrors
	for i, xf := range doc.Faults {
		f, errs := parseFault(i, xf)
		parseErrs = append(parseErrs, errs...)
		faults = append(faults, f)
	}
	if len(parseErrs) > 0 {
		return nil, parseErrs
	}

	if errs := validate(faults); len(errs) > 0 {
		return nil, errs
	}

	return fault.NewCatalogue(faults), nil
}

// parseFault converts one <fault> element into a fault.Fault,
// collecting every syntax error found rather than stopping at the
// first (mirrors parseFaultFromXML's accumulation via
// had_parser_errors).
func parseFault(entryIndex int, xf xmlFault) (fault.Fault, ParseErrors) {
	var errs ParseErrors
	f := fault.Fault{ID: -1}

	if xf.ID == nil {
		errs = append(errs, ParseError{FaultID: -1, Message: "<id> not defined"})
	} else {
		id, err := strconv.ParseInt(strings.TrimSpace(*xf.ID), 10, 64)
		if err != nil || id < 1 {
			errs = append(errs, ParseError{FaultID: -1,
				Message: fmt.Sprintf("entry %d: id %q is not an integer > 0", entryIndex, deref(xf.ID))})
		} else {
			f.ID = int(id)
		}
	}

	if xf.Component != nil {
		if c, ok := fault.ParseComponent(strings.TrimSpace(*xf.Component)); ok {
			f.Component = c
		} else {
			errs = append(errs, ParseError{FaultID: f.ID,
				Message: fmt.Sprintf("<component> has to be CPU, RAM or REGISTER, was %q", *xf.Component)})
		}
	}

	if xf.Target != nil {
		if t, ok := fault.ParseTarget(strings.TrimSpace(*xf.Target)); ok {
			f.Target = t
		} else {
			errs = append(errs, ParseError{FaultID: f.ID,
				Message: fmt.Sprintf("<target> not recognized: %q", *xf.Target)})
		}
	}

	if xf.Mode != nil {
		if m, ok := fault.ParseMode(strings.TrimSpace(*xf.Mode)); ok {
			f.Mode = m
		} else {
			errs = append(errs, ParseError{FaultID: f.ID,
				Message: fmt.Sprintf("<mode> not recognized: %q", *xf.Mode)})
		}
	}

	if xf.Trigger != nil {
		if t, ok := fault.ParseTrigger(strings.TrimSpace(*xf.Trigger)); ok {
			f.Trigger = t
		} else {
			errs = append(errs, ParseError{FaultID: f.ID,
				Message: fmt.Sprintf("<trigger> has to be ACCESS, TIME or PC, was %q", *xf.Trigger)})
		}
	}

	if xf.Type != nil {
		if s, ok := fault.ParseSeverity(strings.TrimSpace(*xf.Type)); ok {
			f.Severity = s
		} else {
			errs = append(errs, ParseError{FaultID: f.ID,
				Message: fmt.Sprintf("<type> has to be TRANSIENT, PERMANENT or INTERMITTENT, was %q", *xf.Type)})
		}
	}

	f.Timer = parseTimeField(xf.Timer, "timer", f.ID, &errs)
	f.Duration = parseTimeField(xf.Duration, "duration", f.ID, &errs)
	f.Interval = parseTimeField(xf.Interval, "interval", f.ID, &errs)

	f.Params = parseParams(xf.Params, f.ID, &errs)

	return f, errs
}

func parseTimeField(v *string, name string, id int, errs *ParseErrors) int64 {
	if v == nil {
		return -1
	}
	d, err := vtime.ParseDuration(strings.TrimSpace(*v))
	if err != nil {
		*errs = append(*errs, ParseError{FaultID: id,
			Message: fmt.Sprintf("<%s> has to be a positive integer ending in NS/MS/US, was %q", name, *v)})
		return -1
	}
	return d
}

func parseParams(xp xmlParams, id int, errs *ParseErrors) fault.Params {
	var p fault.Params

	if xp.Address != nil {
		v, err := parseHex(*xp.Address)
		if err != nil {
			*errs = append(*errs, ParseError{FaultID: id, Message: fmt.Sprintf("<address> not a hex integer: %q", *xp.Address)})
		} else {
			p.Address, p.AddressDefined = v, true
		}
	}
	if xp.CFAddress != nil {
		v, err := parseHex(*xp.CFAddress)
		if err != nil {
			*errs = append(*errs, ParseError{FaultID: id, Message: fmt.Sprintf("<cf_address> not a hex integer: %q", *xp.CFAddress)})
		} else {
			p.CFAddress, p.CFAddressDefined = v, true
		}
	}
	if xp.Mask != nil {
		v, err := parseHex(*xp.Mask)
		if err != nil {
			*errs = append(*errs, ParseError{FaultID: id, Message: fmt.Sprintf("<mask> not a hex integer: %q", *xp.Mask)})
		} else {
			p.Mask, p.MaskDefined = v, true
		}
	}
	if xp.Instruction != nil {
		v, err := parseHex(*xp.Instruction)
		if err != nil {
			*errs = append(*errs, ParseError{FaultID: id, Message: fmt.Sprintf("<instruction> not a hex integer: %q", *xp.Instruction)})
		} else {
			p.Instruction, p.InstructionDefined = v, true
		}
	}
	if xp.SetBit != nil {
		v, err := parseHex(*xp.SetBit)
		if err != nil {
			*errs = append(*errs, ParseError{FaultID: id, Message: fmt.Sprintf("<set_bit> not a hex integer: %q", *xp.SetBit)})
		} else {
			p.SetBit, p.SetBitDefined = v, true
		}
	}

	return p
}

func parseHex(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	return strconv.ParseInt(s, 16, 64)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
