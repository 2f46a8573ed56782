package catalog

import (
	"strings"
	"time"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultLanguage is the language canonical texts originate in.
const DefaultLanguage = "en"

// Unit is a single canonical or translated text, keyed by a
// content-addressed id. Units are immutable for a given language; a
// translation creates a new unit under a derived id.
type Unit struct {
	bun.BaseModel `bun:"table:translations,alias:t"`

	ID        string    `bun:"id,pk"              json:"id"`
	Text      string    `bun:"text,notnull"       json:"text"`
	Language  string    `bun:"language,notnull"   json:"language"`
	Namespace string    `bun:"namespace"          json:"namespace,omitempty"`
	CreatedAt time.Time `bun:"created_at,nullzero" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updated_at"`
}

// UnitID derives the content-addressed id for a text in a language via
// go-hashid. The same (language, text, namespace) triple always yields the
// same id, which makes unit creation and publishing idempotent. Texts stay
// case-sensitive, so hashid normalization is off.
func UnitID(language, text, namespace string) string {
	key := strings.Join([]string{
		"unit",
		strings.TrimSpace(language),
		strings.TrimSpace(namespace),
		strings.TrimSpace(text),
	}, "|")
	uid, err := hashid.NewUUID(key, hashid.WithHashAlgorithm(hashid.SHA256))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
	}
	return uid.String()
}
