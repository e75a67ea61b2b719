package domain

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultKeyringMaxKeys is the retention cap used when none is configured.
const DefaultKeyringMaxKeys = 16

// keyringSnapshot is an immutable view of the keyring. A new snapshot is published
// on every write so readers never observe a half-updated current pointer.
type keyringSnapshot struct {
	current *MasterKey
	byID    map[string]*MasterKey
	order   []*MasterKey // insertion order, oldest first
}

// Keyring holds the process-wide master keys and tracks the current one.
//
// Reads load a snapshot through an atomic pointer and never block. Writes are
// serialised by mu and publish a fresh copy.
type Keyring struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[keyringSnapshot]
	maxKeys  int
	now      func() time.Time
}

// NewKeyring creates an empty keyring. maxKeys <= 0 uses DefaultKeyringMaxKeys.
func NewKeyring(maxKeys int) *Keyring {
	if maxKeys <= 0 {
		maxKeys = DefaultKeyringMaxKeys
	}
	k := &Keyring{maxKeys: maxKeys, now: time.Now}
	k.snapshot.Store(&keyringSnapshot{byID: map[string]*MasterKey{}})
	return k
}

// CurrentKey returns the key used for new encryptions.
func (k *Keyring) CurrentKey() (*MasterKey, error) {
	s := k.snapshot.Load()
	if s.current == nil {
		return nil, ErrNoCurrentMasterKey
	}
	return s.current, nil
}

// KeyByID resolves a key by its fingerprint id.
func (k *Keyring) KeyByID(id string) (*MasterKey, error) {
	if key, ok := k.snapshot.Load().byID[id]; ok {
		return key, nil
	}
	return nil, ErrMasterKeyNotFound
}

// KeyByHash scans the keyring for a key whose full hash matches keyHash.
// The scan is linear; the retention cap bounds its cost.
func (k *Keyring) KeyByHash(keyHash string) (*MasterKey, error) {
	for _, key := range k.snapshot.Load().order {
		if key.KeyHash == keyHash {
			return key, nil
		}
	}
	return nil, ErrMasterKeyNotFound
}

// AddKey adds raw key material and makes it current. The previous current key is
// marked inactive but stays resolvable. Returns the new key id.
func (k *Keyring) AddKey(raw []byte) (string, error) {
	key, err := NewMasterKey(raw, k.now())
	if err != nil {
		return "", err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	old := k.snapshot.Load()
	if _, exists := old.byID[key.ID]; exists {
		Zero(key.Key)
		return "", ErrMasterKeyAlreadyExists
	}
	if len(old.order) >= k.maxKeys {
		Zero(key.Key)
		return "", ErrKeyringFull
	}

	next := &keyringSnapshot{
		byID:  make(map[string]*MasterKey, len(old.order)+1),
		order: make([]*MasterKey, 0, len(old.order)+1),
	}
	for _, existing := range old.order {
		clone := *existing
		clone.IsActive = false
		next.byID[clone.ID] = &clone
		next.order = append(next.order, &clone)
	}
	key.IsActive = true
	next.byID[key.ID] = key
	next.order = append(next.order, key)
	next.current = key

	k.snapshot.Store(next)
	return key.ID, nil
}

// Keys returns the keys in insertion order (oldest first).
func (k *Keyring) Keys() []*MasterKey {
	s := k.snapshot.Load()
	out := make([]*MasterKey, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of keys held.
func (k *Keyring) Len() int {
	return len(k.snapshot.Load().order)
}

// Close zeroes all key material and empties the keyring.
func (k *Keyring) Close() {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, key := range k.snapshot.Load().order {
		Zero(key.Key)
	}
	k.snapshot.Store(&keyringSnapshot{byID: map[string]*MasterKey{}})
}
