package audience

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// NumSchemaFields is the width of each hashed row sent to Facebook.
const NumSchemaFields = 14

// Schema returns the field schema declared alongside every upload payload.
// The position of each entry must match the position of the corresponding
// hash in the rows produced by HashRecord.
func Schema() []string {
	return []string{
		"EMAIL", "EMAIL", "EMAIL",
		"PHONE", "PHONE", "PHONE",
		"FN", "LN", "ZIP",
		"CT", "ST", "COUNTRY",
		"DOBY", "GEN",
	}
}

// HashRecord normalizes every identity field of a record and hashes each
// normalized value, returning the 14 hashes in schema order.
func HashRecord(r CustomerRecord) []string {
	return []string{
		hash(NormalizeEmail(r.Email1)),
		hash(NormalizeEmail(r.Email2)),
		hash(NormalizeEmail(r.Email3)),
		hash(NormalizePhone(r.Phone1)),
		hash(NormalizePhone(r.Phone2)),
		hash(NormalizePhone(r.Phone3)),
		hash(NormalizeName(r.FN)),
		hash(NormalizeName(r.LN)),
		hash(NormalizeZip(r.Zip)),
		hash(NormalizeLocation(r.CT)),
		hash(NormalizeLocation(r.ST)),
		hash(strings.ToLower(r.Country)),
		hash(r.DOBY),
		hash(NormalizeGender(r.Gen)),
	}
}

// HashRecords maps a chunk of records to the row structure Facebook expects.
func HashRecords(records []CustomerRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, HashRecord(r))
	}
	return rows
}

// hash computes the lowercase hex SHA-256 digest of s. Empty input stays
// empty so that absent identity fields remain absent on the wire.
func hash(s string) string {
	if s == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone strips everything that is not a digit.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, c := range phone {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// NormalizeName lowercases and keeps a-z only.
func NormalizeName(name string) string {
	return stripNonAlpha(strings.ToLower(name))
}

// NormalizeLocation applies the same rule as names: lowercase, a-z only.
func NormalizeLocation(loc string) string {
	return stripNonAlpha(strings.ToLower(loc))
}

// NormalizeZip lowercases and removes spaces. No digit validation: non-US
// postal codes pass through.
func NormalizeZip(zip string) string {
	return strings.ReplaceAll(strings.ToLower(zip), " ", "")
}

// NormalizeGender keeps "m" or "f", anything else becomes empty.
func NormalizeGender(gender string) string {
	g := strings.ToLower(gender)
	if g == "m" || g == "f" {
		return g
	}
	return ""
}

func stripNonAlpha(s string) string {
	var b strings.Builder
	for _, c := range s {
		if c >= 'a' && c <= 'z' {
			b.WriteRune(c)
		}
	}
	return b.String()
}
