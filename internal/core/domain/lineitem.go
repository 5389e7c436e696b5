package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/acquire_ledger/internal/apperrors"
)

// LineItemCode tags what a line item does to an account.
type LineItemCode string

const (
	CodeCredit           LineItemCode = "CR" // balance += value
	CodeDebit            LineItemCode = "DR" // balance -= value
	CodeCurrentLiability LineItemCode = "CL" // liability += value
	CodeReceivable       LineItemCode = "AR" // receivable += value
	CodeReceivedReceipt  LineItemCode = "RR" // balance -= receipted, liability -= value
	CodeSentReceipt      LineItemCode = "SR" // balance += receipted, receivable -= value
	CodeReceivedRefund   LineItemCode = "RF" // balance += value
	CodeSentRefund       LineItemCode = "SF" // balance -= value
)

// DayFormat is the layout of the date prefix of note UIDs and snapshot keys.
const DayFormat = "2006-01-02"

func (c LineItemCode) IsValid() bool {
	switch c {
	case CodeCredit, CodeDebit, CodeCurrentLiability, CodeReceivable,
		CodeReceivedReceipt, CodeSentReceipt, CodeReceivedRefund, CodeSentRefund:
		return true
	}
	return false
}

// hasReceiptedValue reports whether the code carries a second value.
func (c LineItemCode) hasReceiptedValue() bool {
	return c == CodeReceivedReceipt || c == CodeSentReceipt
}

// LineItem is the decoded form of the value-carrying suffix of a line item
// key. ReceiptedValue is only meaningful for receipt codes.
type LineItem struct {
	Code           LineItemCode   `json:"code"`
	Value          BoundedDecimal `json:"value"`
	ReceiptedValue BoundedDecimal `json:"receiptedValue"`
}

// EncodeKey renders the key suffix, e.g. "DR:60.000000" or "RR:100.000000:80.000000".
func (l LineItem) EncodeKey() string {
	if l.Code.hasReceiptedValue() {
		return fmt.Sprintf("%s:%s:%s", l.Code, l.Value, l.ReceiptedValue)
	}
	return fmt.Sprintf("%s:%s", l.Code, l.Value)
}

// DecodeLineItem parses a key suffix produced by EncodeKey.
func DecodeLineItem(s string) (LineItem, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return LineItem{}, fmt.Errorf("%w: line item %q", apperrors.ErrMalformed, s)
	}
	code := LineItemCode(parts[0])
	if !code.IsValid() {
		return LineItem{}, fmt.Errorf("%w: unknown line item code %q", apperrors.ErrMalformed, parts[0])
	}
	want := 2
	if code.hasReceiptedValue() {
		want = 3
	}
	if len(parts) != want {
		return LineItem{}, fmt.Errorf("%w: line item %q has %d fields, expected %d", apperrors.ErrMalformed, s, len(parts), want)
	}
	value, err := ParseBoundedDecimal(parts[1])
	if err != nil {
		return LineItem{}, fmt.Errorf("%w: line item %q: %v", apperrors.ErrMalformed, s, err)
	}
	item := LineItem{Code: code, Value: value}
	if code.hasReceiptedValue() {
		if item.ReceiptedValue, err = ParseBoundedDecimal(parts[2]); err != nil {
			return LineItem{}, fmt.Errorf("%w: line item %q: %v", apperrors.ErrMalformed, s, err)
		}
	}
	return item, nil
}

// NewNoteUID builds a date-prefixed note UID: "YYYY-MM-DD/<unix nanos>/<random>".
// The zero-padded nanos keep keys of one day in time order.
func NewNoteUID(now time.Time, random string) string {
	now = now.UTC()
	return fmt.Sprintf("%s/%019d/%s", now.Format(DayFormat), now.UnixNano(), random)
}

// NoteUIDTime extracts the timestamp embedded in a note UID.
func NoteUIDTime(uid string) (time.Time, error) {
	parts := strings.Split(uid, "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: note uid %q", apperrors.ErrMalformed, uid)
	}
	nanos, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: note uid %q", apperrors.ErrMalformed, uid)
	}
	return time.Unix(0, nanos).UTC(), nil
}

// LineItemEntry is a line item together with the note UID it was written under.
type LineItemEntry struct {
	UID  string   `json:"uid"`
	Item LineItem `json:"item"`
}

// SplitLineItemPath parses "<YYYY-MM-DD>/<nanos>/<random>/<CODE:...>" into
// the note UID and its decoded line item.
func SplitLineItemPath(path string) (LineItemEntry, error) {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return LineItemEntry{}, fmt.Errorf("%w: line item path %q", apperrors.ErrMalformed, path)
	}
	uid := path[:i]
	if _, err := NoteUIDTime(uid); err != nil {
		return LineItemEntry{}, err
	}
	item, err := DecodeLineItem(path[i+1:])
	if err != nil {
		return LineItemEntry{}, err
	}
	return LineItemEntry{UID: uid, Item: item}, nil
}
