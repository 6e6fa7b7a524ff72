package conversation

import (
	"bitbucket.org/sotavant/quick-swapp/internal/models"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestDeriveKey(t *testing.T) {
	testCases := []struct {
		name    string
		a, b    models.UserID
		subject models.ItemID
	}{
		{name: "general", a: "u1", b: "u2"},
		{name: "with_item", a: "u1", b: "u2", subject: "item-5"},
		{name: "uuids", a: "7c0e8a4e-2b1f-4c55-9d6c-1c7a1e0a9f10", b: "0b6f7f0e-8d4a-4a43-a3a2-5f1a4c6f2d11", subject: "ffb1d1f4-2f3c-49a7-8c55-0e3c1d2f4a5b"},
		{name: "self", a: "u1", b: "u1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			k1 := DeriveKey(tc.a, tc.b, tc.subject)
			k2 := DeriveKey(tc.b, tc.a, tc.subject)

			assert.Equal(t, k1, k2, "key must not depend on argument order")
			assert.Equal(t, k1, DeriveKey(tc.a, tc.b, tc.subject), "key must be stable")
			assert.NotEmpty(t, k1)
		})
	}
}

func TestDeriveKeySubjectSensitive(t *testing.T) {
	general := DeriveKey("u1", "u2", "")
	scoped := DeriveKey("u1", "u2", "item-5")

	assert.NotEqual(t, general, scoped)
	assert.Equal(t, scoped, DeriveKey("u2", "u1", "item-5"))
	assert.NotEqual(t, scoped, DeriveKey("u1", "u2", "item-6"))
}

func TestDeriveKeyFormat(t *testing.T) {
	assert.Equal(t, models.ConversationID("item-5:u1:u2"), DeriveKey("u2", "u1", "item-5"))
	assert.Equal(t, models.ConversationID("u1:u2"), DeriveKey("u2", "u1", ""))
	assert.Equal(t, models.ConversationID("u1:u1"), DeriveKey("u1", "u1", ""))
}
