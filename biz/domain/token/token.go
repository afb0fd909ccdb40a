package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/xh-polaris/chat-relay/biz/infra/config"
	"github.com/xh-polaris/chat-relay/biz/infra/cst"
)

// DefaultExpire 令牌默认有效期
const DefaultExpire = 7 * 24 * time.Hour

var (
	ErrInvalid     = errors.New("token is not valid")
	ErrEmptySecret = errors.New("token secret is empty")
)

// Claims 令牌中携带的用户身份
type Claims struct {
	UserId string `json:"userId"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verifier 校验令牌, 无效令牌返回ok=false, 不返回错误
type Verifier interface {
	Verify(token string) (uid string, ok bool)
}

// Service 签发与校验HS256令牌, 无可变状态, 可并发使用
type Service struct {
	secret []byte
	expire time.Duration
	now    func() time.Time
}

func NewService(c *config.Config) (*Service, error) {
	expire := DefaultExpire
	if c.Auth.AccessExpire > 0 {
		expire = time.Duration(c.Auth.AccessExpire) * time.Second
	}
	return New(c.Auth.SecretKey, expire)
}

func New(secret string, expire time.Duration) (*Service, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Service{secret: []byte(secret), expire: expire, now: time.Now}, nil
}

// Issue 为用户签发令牌
func (s *Service) Issue(uid, email string) (string, error) {
	if uid == "" {
		return "", ErrInvalid
	}
	now := s.now()
	claims := Claims{
		UserId: uid,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expire)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse 解析并校验令牌, 格式错误/过期/篡改均返回ErrInvalid
func (s *Service) Parse(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalid
	}
	claims := new(Claims)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parsed, err := parser.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil || !parsed.Valid || claims.UserId == "" {
		return nil, ErrInvalid
	}
	return claims, nil
}

// Verify 实现Verifier
func (s *Service) Verify(token string) (string, bool) {
	claims, err := s.Parse(StripBearer(token))
	if err != nil {
		return "", false
	}
	return claims.UserId, true
}

// StripBearer 去掉Authorization头中的Bearer前缀
func StripBearer(token string) string {
	if len(token) > len(cst.Bearer) && token[:len(cst.Bearer)] == cst.Bearer {
		return token[len(cst.Bearer):]
	}
	return token
}
