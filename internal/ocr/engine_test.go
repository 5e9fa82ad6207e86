package ocr

import (
	"math"
	"strings"
	"testing"
)

const tsvHeader = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext"

func tsvRow(conf, word string) string {
	return strings.Join([]string{"5", "1", "1", "1", "1", "1", "10", "10", "50", "20", conf, word}, "\t")
}

func TestMeanTSVConfidenceReadsConfColumn(t *testing.T) {
	// numeric word text must not be mistaken for a confidence value
	out := strings.Join([]string{
		tsvHeader,
		tsvRow("96", "Facture"),
		tsvRow("88", "1500"),
		tsvRow("-1", ""),
		"",
	}, "\n")

	got := meanTSVConfidence(out)
	if math.Abs(float64(got)-0.92) > 1e-6 {
		t.Errorf("mean = %f, want 0.92", got)
	}
}

func TestMeanTSVConfidenceEmptyAndMalformed(t *testing.T) {
	if got := meanTSVConfidence(tsvHeader + "\n"); got != 0 {
		t.Errorf("no rows should mean zero, got %f", got)
	}
	// short rows are skipped, not parsed
	if got := meanTSVConfidence(tsvHeader + "\na\tb\tc\n"); got != 0 {
		t.Errorf("malformed rows should be skipped, got %f", got)
	}
}
