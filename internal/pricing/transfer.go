package pricing

import "fmt"

// Byte sizes used for transfer allowances.
const (
	GiB int64 = 1 << 30
	TiB int64 = 1 << 40
)

// FormatBytes renders a transfer allowance, e.g. "20.0 TiB".
func FormatBytes(n int64) string {
	switch {
	case n <= 0:
		return "none"
	case n >= TiB:
		return fmt.Sprintf("%.1f TiB", float64(n)/float64(TiB))
	default:
		return fmt.Sprintf("%.1f GiB", float64(n)/float64(GiB))
	}
}
