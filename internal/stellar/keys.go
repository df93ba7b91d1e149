package stellar

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Collection prefixes for numbered manage-data keys. Organizations list
// their members under MyPart###, individuals list their memberships under
// PartOf###.
const (
	MyPartPrefix = "MyPart"
	PartOfPrefix = "PartOf"
)

// Fixed single-valued manage-data keys.
const (
	KeyName               = "Name"
	KeyAbout              = "About"
	KeyWebsite            = "Website"
	KeyTelegramPartChatID = "TelegramPartChatID"
	KeyTelegramUserID     = "TelegramUserID"
	KeyContractIPFS       = "ContractIPFS"
	KeyTimeTokenCode      = "TimeTokenCode"
	KeyTimeTokenIssuer    = "TimeTokenIssuer"
	KeyTimeTokenDesc      = "TimeTokenDesc"
	KeyTimeTokenOfferIPFS = "TimeTokenOfferIPFS"
)

// MaxEntrySize is the manage-data limit for both key names and values.
const MaxEntrySize = 64

// FormatCollectionKey builds a numbered collection key, zero-padding the id
// to a minimum of three digits: ("MyPart", "7") -> "MyPart007". Ids beyond
// 999 keep their natural width; the numbering is not capped.
func FormatCollectionKey(collection, id string) string {
	for len(id) < 3 {
		id = "0" + id
	}
	return collection + id
}

// ExtractCollectionID returns the numeric id of a numbered collection key,
// or false if the key does not belong to the collection.
// ("MyPart007", "MyPart") -> 7.
func ExtractCollectionID(key, collection string) (int, bool) {
	if !strings.HasPrefix(key, collection) {
		return 0, false
	}
	suffix := key[len(collection):]
	if suffix == "" {
		return 0, false
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return id, true
}

// IsCollectionKey reports whether key is a numbered key of the collection.
func IsCollectionKey(key, collection string) bool {
	_, ok := ExtractCollectionID(key, collection)
	return ok
}

// CollectionKeys returns the numbered keys of a collection present in the
// snapshot, sorted by id.
func CollectionKeys(snap Snapshot, collection string) []string {
	var keys []string
	for key := range snap {
		if IsCollectionKey(key, collection) {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := ExtractCollectionID(keys[i], collection)
		b, _ := ExtractCollectionID(keys[j], collection)
		return a < b
	})
	return keys
}

// HighestCollectionID returns the highest id stored for the collection, or
// zero when the snapshot holds none.
func HighestCollectionID(snap Snapshot, collection string) int {
	highest := 0
	for key := range snap {
		if id, ok := ExtractCollectionID(key, collection); ok && id > highest {
			highest = id
		}
	}
	return highest
}

// NextCollectionIDs allocates count fresh ids for the collection, starting
// at the highest existing id plus one.
func NextCollectionIDs(snap Snapshot, collection string, count int) []string {
	highest := HighestCollectionID(snap, collection)
	ids := make([]string, count)
	for i := range ids {
		ids[i] = strconv.Itoa(highest + 1 + i)
	}
	return ids
}

// ValidateEntry checks the manage-data size limits for a key/value pair.
func ValidateEntry(key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("data entry key is empty")
	}
	if len(key) > MaxEntrySize {
		return fmt.Errorf("data entry key %q exceeds %d bytes", key, MaxEntrySize)
	}
	if len(value) > MaxEntrySize {
		return fmt.Errorf("data entry value for %q exceeds %d bytes", key, MaxEntrySize)
	}
	return nil
}
