package auth

import (
	"net/url"
	"strings"
	"time"

	"github.com/lib/pq"
)

// User is the account record. Identity is the email address; authentication
// is deliberately trivial (no password), sessions are JWT-scoped.
type User struct {
	ID     uint64 `gorm:"primaryKey"`
	Email  string `gorm:"uniqueIndex;not null"`
	Name   string `gorm:"not null"`
	Avatar string `gorm:"type:text"`

	// Recipients for low-stock alert emails. Defaults to the account email.
	NotificationEmails pq.StringArray `gorm:"type:text[];not null;default:'{}'"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

// DeriveName turns an email local part into a display name:
// "jane.doe@x.com" -> "Jane Doe".
func DeriveName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local = strings.NewReplacer(".", " ", "_", " ").Replace(local)

	words := strings.Fields(local)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// AvatarURL builds the default generated-avatar reference for a display name.
func AvatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=10b981&color=fff"
}
