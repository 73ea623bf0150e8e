package checkout

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const orderNumberPrefix = "MM"

const base36Upper = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// PickupOrderNumber encodes the submission instant as upper-case base 36,
// e.g. MM-M1A2B3C4. Uniqueness rides on millisecond granularity; the
// database carries a unique constraint as the backstop.
func PickupOrderNumber(now time.Time) string {
	token := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	return fmt.Sprintf("%s-%s", orderNumberPrefix, token)
}

// CardOrderNumber uses a date part plus a short random suffix, e.g.
// MM-260830-X4K. Used on the card path where the number is minted before
// the order exists.
func CardOrderNumber(now time.Time) string {
	datePart := now.UTC().Format("060102")
	suffix := make([]byte, 3)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(base36Upper))))
		if err != nil {
			// crypto/rand only fails when the platform source is broken;
			// fall back to a time-derived digit rather than aborting checkout.
			suffix[i] = base36Upper[now.UnixNano()%int64(len(base36Upper))]
			continue
		}
		suffix[i] = base36Upper[n.Int64()]
	}
	return fmt.Sprintf("%s-%s-%s", orderNumberPrefix, datePart, suffix)
}
