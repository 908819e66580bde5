package session

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable is an exported constant or variable used by the session store.
var ErrRedisUnavailable = errors.New("redis unavailable")

const (
	credentialsSuffix = ":credentials"
	authTokenSuffix   = ":authToken"
	changesSuffix     = ":changes"
)

const mergeAuthTokenScript = `
redis.call("SET", KEYS[1], ARGV[1])
redis.call("PUBLISH", KEYS[2], "authToken")
return 1
`

var mergeAuthTokenLua = redis.NewScript(mergeAuthTokenScript)

// RedisStore persists credentials and the auth token under a key prefix and
// relays writes from other processes over a pub/sub channel. Local writes
// notify local subscribers synchronously (see package doc).
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string

	mu          sync.RWMutex
	subscribers map[uint64]func(Change)
	nextSub     uint64

	pubsub *redis.PubSub
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewRedisStore builds a RedisStore on client with the given key prefix and
// starts the cross-process change listener.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "gd"
	}

	s := &RedisStore{
		rdb:         client,
		prefix:      prefix,
		subscribers: make(map[uint64]func(Change)),
		done:        make(chan struct{}),
	}

	s.pubsub = client.Subscribe(context.Background(), prefix+changesSuffix)
	s.wg.Add(1)
	go s.listen()

	return s
}

func (s *RedisStore) listen() {
	defer s.wg.Done()

	ch := s.pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg.Payload != "authToken" {
				continue
			}
			token, exists, err := s.AuthToken(context.Background())
			if err != nil || !exists {
				continue
			}
			s.fanOut(Change{Kind: ChangeAuthToken, AuthToken: token})
		case <-s.done:
			return
		}
	}
}

// Credentials describes the credentials operation and its observable behavior.
func (s *RedisStore) Credentials(ctx context.Context) (Credentials, bool, error) {
	fields, err := s.rdb.HGetAll(ctx, s.prefix+credentialsSuffix).Result()
	if err != nil {
		return Credentials{}, false, err
	}
	if len(fields) == 0 {
		return Credentials{}, false, nil
	}
	return Credentials{
		Login:    fields["login"],
		Password: fields["password"],
	}, true, nil
}

// AuthToken describes the authtoken operation and its observable behavior.
func (s *RedisStore) AuthToken(ctx context.Context) (string, bool, error) {
	token, err := s.rdb.Get(ctx, s.prefix+authTokenSuffix).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return token, true, nil
}

// SetCredentials describes the setcredentials operation and its observable behavior.
func (s *RedisStore) SetCredentials(ctx context.Context, creds Credentials) error {
	if err := s.rdb.HSet(ctx, s.prefix+credentialsSuffix,
		"login", creds.Login,
		"password", creds.Password,
	).Err(); err != nil {
		return err
	}

	s.fanOut(Change{Kind: ChangeCredentials, Credentials: creds})
	return nil
}

// MergeAuthToken writes the token and publishes the change in one script so
// other processes never observe the publish without the write.
func (s *RedisStore) MergeAuthToken(ctx context.Context, token string) error {
	keys := []string{s.prefix + authTokenSuffix, s.prefix + changesSuffix}
	if err := mergeAuthTokenLua.Run(ctx, s.rdb, keys, token).Err(); err != nil {
		return err
	}

	s.fanOut(Change{Kind: ChangeAuthToken, AuthToken: token})
	return nil
}

// Subscribe describes the subscribe operation and its observable behavior.
func (s *RedisStore) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Close stops the change listener. The Redis client itself stays open; it is
// owned by the caller.
func (s *RedisStore) Close() error {
	select {
	case <-s.done:
		return nil
	default:
	}
	close(s.done)
	err := s.pubsub.Close()
	s.wg.Wait()
	return err
}

func (s *RedisStore) fanOut(change Change) {
	s.mu.RLock()
	fns := make([]func(Change), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(change)
	}
}
