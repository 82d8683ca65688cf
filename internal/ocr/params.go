package ocr

import (
	"fmt"
	"strconv"
	"strings"
)

// Engine identifies the OCR backend implementation servicing a request
type Engine string

const (
	EngineTesseract Engine = "tesseract"
	EngineKraken    Engine = "kraken"
)

// ParseEngine validates an engine name. An empty name selects tesseract.
func ParseEngine(name string) (Engine, error) {
	switch Engine(strings.ToLower(strings.TrimSpace(name))) {
	case "", EngineTesseract:
		return EngineTesseract, nil
	case EngineKraken:
		return EngineKraken, nil
	default:
		return "", fmt.Errorf("unknown engine %q", name)
	}
}

// PSM is a Tesseract page segmentation mode
type PSM int

// Page segmentation modes, matching Tesseract's numbering.
// PSMAuto is not sent to the engine; it asks Resolve to pick one.
const (
	PSMAuto                PSM = -1
	PSMOSDOnly             PSM = 0
	PSMAutoOSD             PSM = 1
	PSMAutoOnly            PSM = 2
	PSMFullyAutomatic      PSM = 3
	PSMSingleColumn        PSM = 4
	PSMSingleBlockVertText PSM = 5
	PSMSingleBlock         PSM = 6
	PSMSingleLine          PSM = 7
	PSMSingleWord          PSM = 8
	PSMCircleWord          PSM = 9
	PSMSingleChar          PSM = 10
	PSMSparseText          PSM = 11
	PSMSparseTextOSD       PSM = 12
	PSMRawLine             PSM = 13
)

// ParsePSM parses a user supplied mode. Empty and "auto" mean PSMAuto.
func ParsePSM(s string) (PSM, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "auto") {
		return PSMAuto, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return PSMAuto, fmt.Errorf("invalid psm %q: %w", s, err)
	}
	if n < int(PSMOSDOnly) || n > int(PSMRawLine) {
		return PSMAuto, fmt.Errorf("psm %d out of range 0-13", n)
	}
	return PSM(n), nil
}

// String returns the form field value, or "auto"
func (p PSM) String() string {
	if p == PSMAuto {
		return "auto"
	}
	return strconv.Itoa(int(p))
}

// Params are the OCR submission parameters for one run
type Params struct {
	Engine      Engine
	PSM         PSM
	Lang        string
	KrakenModel string
}

// Defaults holds the configured parameter defaults
type Defaults struct {
	Engine      Engine
	Lang        string
	KrakenModel string
}

// DefaultLang is the OCR language used for Latin sources
const DefaultLang = "lat"

// Resolve derives the submission parameters for a file. A non-auto override
// always wins; otherwise PDFs get a block layout and images a single line.
func Resolve(file *SelectedFile, override PSM, defaults Defaults) Params {
	psm := override
	if psm == PSMAuto {
		if file.Kind == KindPDF {
			psm = PSMSingleBlock
		} else {
			psm = PSMSingleLine
		}
	}

	engine := defaults.Engine
	if engine == "" {
		engine = EngineTesseract
	}
	lang := defaults.Lang
	if lang == "" {
		lang = DefaultLang
	}

	return Params{
		Engine:      engine,
		PSM:         psm,
		Lang:        lang,
		KrakenModel: defaults.KrakenModel,
	}
}
