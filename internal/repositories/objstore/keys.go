package objstore

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/acquire_ledger/internal/apperrors"
	"github.com/SscSPs/acquire_ledger/internal/core/domain"
)

// Key layout of the object store:
//
//	accounts/<uid>                                  account document
//	accounts/<uid>/balance/<YYYY-MM-DD>             day-start snapshot
//	accounts/<uid>/<YYYY-MM-DD>/<nanos>/<rand>/<item> line item
//	transactions/<uid>                              transaction record
//	account_groups/<group>/<base64url(name)>        name index
const (
	accountsRoot     = "accounts/"
	transactionsRoot = "transactions/"
	groupsRoot       = "account_groups/"
	balanceSegment   = "balance/"
)

func accountKey(uid string) string { return accountsRoot + uid }

func accountPrefix(uid string) string { return accountsRoot + uid + "/" }

func snapshotPrefix(uid string) string { return accountPrefix(uid) + balanceSegment }

func snapshotKey(uid string, day time.Time) string {
	return snapshotPrefix(uid) + day.UTC().Format(domain.DayFormat)
}

func lineItemDayPrefix(uid string, day time.Time) string {
	return accountPrefix(uid) + day.UTC().Format(domain.DayFormat) + "/"
}

func lineItemKey(uid string, entry domain.LineItemEntry) string {
	return accountPrefix(uid) + entry.UID + "/" + entry.Item.EncodeKey()
}

func transactionKey(uid string) string { return transactionsRoot + uid }

func groupPrefix(group string) string { return groupsRoot + group + "/" }

func groupKey(group, name string) string {
	return groupPrefix(group) + base64.URLEncoding.EncodeToString([]byte(name))
}

func decodeGroupName(key, group string) (string, error) {
	raw, err := base64.URLEncoding.DecodeString(strings.TrimPrefix(key, groupPrefix(group)))
	if err != nil {
		return "", fmt.Errorf("%w: account group key %q", apperrors.ErrMalformed, key)
	}
	return string(raw), nil
}

// validatePathSegment rejects identifiers that would break the key layout.
func validatePathSegment(kind, v string) error {
	if strings.TrimSpace(v) == "" || strings.Contains(v, "/") {
		return fmt.Errorf("%w: invalid %s %q", apperrors.ErrValidation, kind, v)
	}
	return nil
}
