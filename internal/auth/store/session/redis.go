package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/icnevudila/crm-sub011/internal/auth/models"
	"github.com/icnevudila/crm-sub011/internal/platform/authz"
	id "github.com/icnevudila/crm-sub011/pkg/domain"
	"github.com/icnevudila/crm-sub011/pkg/platform/sentinel"
)

const (
	sessionKeyPrefix     = "session:"
	userSessionKeyPrefix = "user_sessions:"

	// maxSessionsPerUser caps the number of sessions loaded per user to
	// prevent unbounded memory growth.
	maxSessionsPerUser = 100
)

// sessionJSON is the JSON-serializable representation of a Session.
type sessionJSON struct {
	Token       string `json:"token"`
	UserID      string `json:"user_id"`
	CompanyID   string `json:"company_id,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Device      string `json:"device,omitempty"`
	IP          string `json:"ip,omitempty"`
	ExpiresAt   int64  `json:"expires_at"` // Unix nano
	CreatedAt   int64  `json:"created_at"` // Unix nano
}

func toJSON(s *models.Session) *sessionJSON {
	j := &sessionJSON{
		Token:       s.Token,
		UserID:      s.UserID.String(),
		CompanyName: s.CompanyName,
		Email:       s.Email,
		Role:        string(s.Role),
		Device:      s.Device,
		IP:          s.IP,
		ExpiresAt:   s.ExpiresAt.UnixNano(),
		CreatedAt:   s.CreatedAt.UnixNano(),
	}
	if !s.CompanyID.IsNil() {
		j.CompanyID = s.CompanyID.String()
	}
	return j
}

func fromJSON(j *sessionJSON) (*models.Session, error) {
	userID, err := id.ParseUserID(j.UserID)
	if err != nil {
		return nil, fmt.Errorf("decode session user: %w", err)
	}
	sess := &models.Session{
		Token:       j.Token,
		UserID:      userID,
		CompanyName: j.CompanyName,
		Email:       j.Email,
		Role:        authz.Role(j.Role),
		Device:      j.Device,
		IP:          j.IP,
		ExpiresAt:   time.Unix(0, j.ExpiresAt),
		CreatedAt:   time.Unix(0, j.CreatedAt),
	}
	if j.CompanyID != "" {
		companyID, err := id.ParseCompanyID(j.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("decode session company: %w", err)
		}
		sess.CompanyID = companyID
	}
	return sess, nil
}

// RedisStore keeps sessions in Redis with TTLs matching session expiry, so
// expired sessions vanish without a cleanup pass.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedis constructs a Redis-backed session store.
func NewRedis(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Create(ctx context.Context, sess *models.Session) error {
	payload, err := json.Marshal(toJSON(sess))
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return sentinel.ErrExpired
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+sess.Token, payload, ttl)
	pipe.SAdd(ctx, userSessionKeyPrefix+sess.UserID.String(), sess.Token)
	pipe.Expire(ctx, userSessionKeyPrefix+sess.UserID.String(), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisStore) FindByToken(ctx context.Context, token string) (*models.Session, error) {
	payload, err := s.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var j sessionJSON
	if err := json.Unmarshal(payload, &j); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return fromJSON(&j)
}

func (s *RedisStore) ListByUser(ctx context.Context, userID id.UserID) ([]*models.Session, error) {
	tokens, err := s.client.SMembers(ctx, userSessionKeyPrefix+userID.String()).Result()
	if err != nil {
		return nil, fmt.Errorf("list user sessions: %w", err)
	}
	if len(tokens) > maxSessionsPerUser {
		tokens = tokens[:maxSessionsPerUser]
	}

	var out []*models.Session
	for _, tok := range tokens {
		sess, err := s.FindByToken(ctx, tok)
		if errors.Is(err, sentinel.ErrNotFound) {
			// Expired entry still referenced from the user set; drop it.
			s.client.SRem(ctx, userSessionKeyPrefix+userID.String(), tok)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	sess, err := s.FindByToken(ctx, token)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKeyPrefix+token)
	pipe.SRem(ctx, userSessionKeyPrefix+sess.UserID.String(), token)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *RedisStore) DeleteByUser(ctx context.Context, userID id.UserID) error {
	tokens, err := s.client.SMembers(ctx, userSessionKeyPrefix+userID.String()).Result()
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}
	pipe := s.client.TxPipeline()
	for _, tok := range tokens {
		pipe.Del(ctx, sessionKeyPrefix+tok)
	}
	pipe.Del(ctx, userSessionKeyPrefix+userID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op: Redis expires session keys via TTL.
func (s *RedisStore) DeleteExpired(_ context.Context) (int, error) {
	return 0, nil
}
