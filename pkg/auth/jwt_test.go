package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"vizin/pkg/model"

	jwt "github.com/golang-jwt/jwt/v5"
)

func TestTokens_IssueAndParse(t *testing.T) {
	tokens := NewTokens("test-secret")

	tok, err := tokens.Issue(Actor{ID: "host-1", Role: model.RoleHost}, time.Minute)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	actor, err := tokens.Parse(tok)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if actor.ID != "host-1" || !actor.IsHost() {
		t.Errorf("actor = %+v", actor)
	}
}

func TestTokens_MissingRoleIsGuest(t *testing.T) {
	tokens := NewTokens("test-secret")
	tok, err := tokens.Issue(Actor{ID: "guest-1"}, time.Minute)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	actor, err := tokens.Parse(tok)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if actor.Role != model.RoleGuest {
		t.Errorf("role = %s, want guest", actor.Role)
	}
}

func TestTokens_Rejects(t *testing.T) {
	tokens := NewTokens("test-secret")

	expired, _ := tokens.Issue(Actor{ID: "u-1"}, -time.Minute)
	foreign, _ := NewTokens("other-secret").Issue(Actor{ID: "u-1"}, time.Minute)
	noneAlg, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Sub: "u-1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	noSub, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{}).SignedString([]byte("test-secret"))

	tests := map[string]string{
		"expired":      expired,
		"wrong secret": foreign,
		"none alg":     noneAlg,
		"missing sub":  noSub,
		"garbage":      "not-a-token",
		"empty":        "",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := tokens.Parse(tok); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestActorContext(t *testing.T) {
	if _, ok := ActorFromContext(context.Background()); ok {
		t.Error("expected no actor on empty context")
	}
	ctx := WithActor(context.Background(), Actor{ID: "g-1", Role: model.RoleGuest})
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.ID != "g-1" {
		t.Errorf("ActorFromContext() = %+v, %v", actor, ok)
	}
}
