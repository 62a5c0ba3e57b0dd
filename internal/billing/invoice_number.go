package billing

import (
	"fmt"
	"regexp"
	"strconv"
)

var invoiceNumberPattern = regexp.MustCompile(`^INV-(\d{4})-(\d+)$`)

// NextInvoiceNumber produces the next number in the per-user INV-YYYY-NNN
// sequence. The sequence increments within a calendar year and restarts at
// 001 when the year rolls over or when no prior invoice exists.
func NextInvoiceNumber(lastNumber string, year int) string {
	seq := 1
	if m := invoiceNumberPattern.FindStringSubmatch(lastNumber); m != nil {
		lastYear, _ := strconv.Atoi(m[1])
		lastSeq, _ := strconv.Atoi(m[2])
		if lastYear == year {
			seq = lastSeq + 1
		}
	}
	return fmt.Sprintf("INV-%d-%03d", year, seq)
}
