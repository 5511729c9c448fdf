package sessions

// Keys under which the session values are persisted.
const (
	AccessTokenKey  = "token"
	RefreshTokenKey = "refresh"
)

// Repo is the persistence boundary of a Store. Values survive process
// restarts for every implementation except the in-memory fake.
type Repo interface {
	// Get returns apperrors.ErrNotFound when key has no value.
	Get(key string) (string, error)
	Upsert(key, value string) error
	// Delete is a no-op for absent keys.
	Delete(key string) error
}
