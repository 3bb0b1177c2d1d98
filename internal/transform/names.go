package transform

import "npcfinder/internal/http-api/models"

// BuildUserNameMap merges partial id->name sources with first-write-wins
// precedence in argument order. Callers pass the friend list first: it is the
// only source the user curates, so it wins over names embedded in
// recommendation rows.
func BuildUserNameMap(sources ...map[string]string) map[string]string {
	merged := make(map[string]string)
	for _, src := range sources {
		for id, name := range src {
			if name == "" {
				continue
			}
			if _, taken := merged[id]; !taken {
				merged[id] = name
			}
		}
	}
	return merged
}

// NamesFromFriends extracts id->name pairs from preloaded connections.
func NamesFromFriends(conns []models.Connection) map[string]string {
	names := make(map[string]string, len(conns))
	for _, c := range conns {
		if c.Friend == nil {
			continue
		}
		name := c.Friend.DisplayName
		if name == "" {
			name = c.Friend.Username
		}
		names[c.FriendID] = name
	}
	return names
}

// SenderNames extracts sender id->name pairs from inbound rows.
func SenderNames(recs []Recommendation) map[string]string {
	names := make(map[string]string)
	for _, r := range recs {
		if r.SenderName != "" {
			if _, taken := names[r.SenderID]; !taken {
				names[r.SenderID] = r.SenderName
			}
		}
	}
	return names
}

// RecipientNames extracts recipient id->name pairs from outbound rows.
func RecipientNames(recs []Recommendation) map[string]string {
	names := make(map[string]string)
	for _, r := range recs {
		if r.RecipientName != "" {
			if _, taken := names[r.RecipientID]; !taken {
				names[r.RecipientID] = r.RecipientName
			}
		}
	}
	return names
}
