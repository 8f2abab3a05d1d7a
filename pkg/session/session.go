package session

import (
	"net/http"

	"github.com/gorilla/sessions"
)

// Store binds a gorilla sessions.Store to one cookie name and one set of
// cookie options.
type Store struct {
	name    string
	store   sessions.Store
	options sessions.Options
}

func NewCookieStore(name string, options sessions.Options, keypairs ...[]byte) *Store {
	return &Store{
		name:    name,
		store:   sessions.NewCookieStore(keypairs...),
		options: options,
	}
}

// Get returns the session of the request. A cookie which cannot be decoded
// yields a new empty session together with the decoding error.
func (s *Store) Get(r *http.Request) (*sessions.Session, error) {
	session, err := s.store.Get(r, s.name)
	if session != nil {
		options := s.options
		session.Options = &options
	}

	return session, err
}

func (s *Store) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	return s.store.Save(r, w, session)
}

// Clear deletes the session cookie on the client.
func (s *Store) Clear(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	for key := range session.Values {
		delete(session.Values, key)
	}

	options := s.options
	options.MaxAge = -1
	session.Options = &options
	return s.store.Save(r, w, session)
}
