package session

import (
	"time"

	"github.com/gopherchat/gopherchat/internal/models"
)

// ChatGroup is one recency bucket of the sidebar chat list.
type ChatGroup struct {
	Label string        `json:"label"`
	Chats []models.Chat `json:"chats"`
}

var groupLabels = []string{"Today", "Yesterday", "Previous 7 Days", "Previous 30 Days", "Older"}

// GroupChatsByRecency buckets chats by their last update relative to local
// midnight in now's location. Empty buckets are omitted and input order is
// preserved inside each bucket.
func GroupChatsByRecency(chats []models.Chat, now time.Time) []ChatGroup {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	bounds := []time.Time{
		midnight,
		midnight.AddDate(0, 0, -1),
		midnight.AddDate(0, 0, -7),
		midnight.AddDate(0, 0, -30),
	}

	buckets := make([][]models.Chat, len(groupLabels))
	for _, chat := range chats {
		idx := len(bounds) // Older
		for i, b := range bounds {
			if !chat.UpdatedAt.Before(b) {
				idx = i
				break
			}
		}
		buckets[idx] = append(buckets[idx], chat)
	}

	groups := make([]ChatGroup, 0, len(groupLabels))
	for i, label := range groupLabels {
		if len(buckets[i]) == 0 {
			continue
		}
		groups = append(groups, ChatGroup{Label: label, Chats: buckets[i]})
	}
	return groups
}
