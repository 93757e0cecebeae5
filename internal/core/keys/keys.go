// Package keys derives the partition and sort keys under which accounts and
// ledger entries are stored. All functions are pure.
package keys

import (
	"strings"
	"time"

	"github.com/SscSPs/family_bank/internal/core/domain"
)

const (
	userPrefix   = "USER#"
	entryPrefix  = "TRANS#"
	parentPrefix = "PARENT#"
	childPrefix  = "CHILD#"
	rolePrefix   = "ROLE#"

	// ProfileSK is the sort key of every account profile item.
	ProfileSK = "PROFILE"
	// EntrySKPrefix prefixes the sort key of every ledger entry item.
	EntrySKPrefix = entryPrefix

	// TimestampLayout is fixed width so that lexical order equals chronological order.
	TimestampLayout = "2006-01-02T15:04:05.000000Z"
)

// Key addresses one stored item.
type Key struct {
	PK string
	SK string
}

// IndexKeys holds the secondary index keys derived from an account.
// Empty fields mean the item is absent from that index.
type IndexKeys struct {
	ParentPK string
	ParentSK string
	RolePK   string
	RoleSK   string
}

// Account returns the key of an account's profile item.
func Account(accountID string) Key {
	return Key{PK: userPrefix + accountID, SK: ProfileSK}
}

// Ledger returns the key of a ledger entry.
func Ledger(accountID string, ts time.Time, entryID string) Key {
	return Key{PK: userPrefix + accountID, SK: entryPrefix + FormatTimestamp(ts) + "#" + entryID}
}

// FormatTimestamp renders ts in TimestampLayout, in UTC.
func FormatTimestamp(ts time.Time) string {
	return ts.UTC().Format(TimestampLayout)
}

// ParentIndex returns the parent-index key linking a child to its parent.
func ParentIndex(parentID, childID string) Key {
	return Key{PK: parentPrefix + parentID, SK: childPrefix + childID}
}

// ParentIndexPK returns the parent-index partition holding all children of parentID.
func ParentIndexPK(parentID string) string {
	return parentPrefix + parentID
}

// RoleIndex returns the role-index key of a child account.
func RoleIndex(childID string) Key {
	return Key{PK: RoleIndexPK(domain.RoleChild), SK: userPrefix + childID}
}

// RoleIndexPK returns the role-index partition of role.
func RoleIndexPK(role domain.Role) string {
	return rolePrefix + string(role)
}

// ForAccount derives the index keys of an account record. Parents carry none.
func ForAccount(a domain.Account) IndexKeys {
	if !a.IsChild() {
		return IndexKeys{}
	}
	parent := ParentIndex(a.ParentID, a.AccountID)
	role := RoleIndex(a.AccountID)
	return IndexKeys{
		ParentPK: parent.PK,
		ParentSK: parent.SK,
		RolePK:   role.PK,
		RoleSK:   role.SK,
	}
}

// AccountIDFromPK strips the user prefix from a partition key.
func AccountIDFromPK(pk string) (string, bool) {
	return strings.CutPrefix(pk, userPrefix)
}

// IsEntrySK reports whether sk addresses a ledger entry.
func IsEntrySK(sk string) bool {
	return strings.HasPrefix(sk, entryPrefix)
}
