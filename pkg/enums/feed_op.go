package enums

import "fmt"

// FeedOp is the change kind carried on the orders change feed.
type FeedOp string

const (
	FeedOpInsert FeedOp = "insert"
	FeedOpUpdate FeedOp = "update"
	FeedOpDelete FeedOp = "delete"
)

var validFeedOps = []FeedOp{
	FeedOpInsert,
	FeedOpUpdate,
	FeedOpDelete,
}

// String implements fmt.Stringer.
func (f FeedOp) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FeedOp.
func (f FeedOp) IsValid() bool {
	for _, candidate := range validFeedOps {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFeedOp converts raw input (including Postgres TG_OP spellings)
// into a FeedOp.
func ParseFeedOp(value string) (FeedOp, error) {
	switch value {
	case "INSERT":
		return FeedOpInsert, nil
	case "UPDATE":
		return FeedOpUpdate, nil
	case "DELETE":
		return FeedOpDelete, nil
	}
	for _, candidate := range validFeedOps {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid feed op %q", value)
}
