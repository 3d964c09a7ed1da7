package types

import (
	"fmt"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/teris-io/shortid"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex mem_0ujsswThIGTUYm2K8FjOOfXtY1K
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

// Entity ID prefixes
const (
	UUIDPrefixMember            = "mem"
	UUIDPrefixMembership        = "msh"
	UUIDPrefixLedgerTransaction = "txn"
	UUIDPrefixRecurringCharge   = "rch"
)

var (
	sidGenerator *shortid.Shortid
	once         sync.Once
)

func initializeSID() {
	var err error
	sidGenerator, err = shortid.New(1, shortid.DefaultABC, 2342)
	if err != nil {
		panic("failed to initialize shortid generator: " + err.Error())
	}
}

// GenerateReceiptNumber returns a short human-readable receipt number,
// e.g. `RC-X8Q2AZ`. Used on ledger entries handed to members.
func GenerateReceiptNumber() string {
	once.Do(initializeSID)

	id, err := sidGenerator.Generate()
	if err != nil {
		return ""
	}
	id = strings.ReplaceAll(id, "-", "")

	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(fmt.Sprintf("RC-%s", id))
}
