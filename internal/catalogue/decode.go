package catalogue

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	// ErrEmptyDocument is returned when the catalogue document has no content
	// at all, e.g. an empty or whitespace-only cache file.
	ErrEmptyDocument = errors.New("catalogue document is empty")

	// ErrMalformed is returned for documents that are not well-formed JSON,
	// including truncated ones.
	ErrMalformed = errors.New("catalogue document is not valid JSON")

	// ErrNoGroups is returned for documents that decode to null, to an
	// object without any group, or to groups that are all null.
	ErrNoGroups = errors.New("catalogue document has no groups")
)

// Decode parses a catalogue document: a JSON object keyed by group name whose
// values are JSON objects keyed by function name (or hash). Document order is
// kept at both levels.
func Decode(data []byte) (*Catalogue, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmptyDocument
	}
	if !json.Valid(trimmed) {
		return nil, errors.WithStack(ErrMalformed)
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return nil, errors.WithStack(ErrNoGroups)
	}
	if trimmed[0] != '{' {
		return nil, errors.Wrapf(ErrMalformed, "top level must be an object, got %q", trimmed[:1])
	}

	groups := orderedmap.New[string, *Group]()
	if err := json.Unmarshal(trimmed, groups); err != nil {
		return nil, errors.Wrap(err, "decoding catalogue")
	}
	usable := 0
	for pair := groups.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value == nil {
			continue
		}
		usable++
		for fn := pair.Value.Oldest(); fn != nil; fn = fn.Next() {
			normalize(fn.Key, fn.Value)
		}
	}
	if usable == 0 {
		return nil, errors.WithStack(ErrNoGroups)
	}
	return &Catalogue{groups: groups}, nil
}

// DecodeReader reads r fully and decodes it with Decode.
func DecodeReader(r io.Reader) (*Catalogue, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading catalogue")
	}
	return Decode(data)
}

// normalize fills the name and hash of an entry from its key when the entry
// itself leaves them out. Databases that key entries by hash name unnamed
// natives "_0x<hash>".
func normalize(key string, f *Function) {
	if f == nil {
		return
	}
	keyHash, keyIsHash := hashKey(key)
	if !f.Hash.Set && keyIsHash {
		f.Hash = Hash{Value: keyHash, Set: true}
	}
	if f.Name == "" {
		if keyIsHash {
			f.Name = "_" + f.Hash.String()
		} else {
			f.Name = key
		}
	}
}

func hashKey(key string) (uint64, bool) {
	if !strings.HasPrefix(key, "0x") && !strings.HasPrefix(key, "0X") {
		return 0, false
	}
	v, err := ParseHash(key)
	if err != nil {
		return 0, false
	}
	return v, true
}
