package transform

import (
	"sort"

	"npcfinder/internal/shared"
)

// GroupPendingBySender buckets inbound pending recommendations by sender id.
// Senders without a pending row never get a bucket.
func GroupPendingBySender(recs []Recommendation) map[string][]Recommendation {
	grouped := make(map[string][]Recommendation)
	for _, r := range recs {
		if r.Status != shared.StatusPending {
			continue
		}
		grouped[r.SenderID] = append(grouped[r.SenderID], r)
	}
	return grouped
}

// FriendSummary aggregates one sender's recommendation outcomes. Derived on
// every fetch, never persisted.
type FriendSummary struct {
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name"`
	Pending    int    `json:"pending"`
	Hit        int    `json:"hit"`
	Miss       int    `json:"miss"`
	Consumed   int    `json:"consumed"`
	Total      int    `json:"total"`
}

// Summarize counts inbound recommendations per sender. names resolves sender
// display names; unknown ids keep an empty name rather than failing.
func Summarize(inbox []Recommendation, names map[string]string) []FriendSummary {
	bySender := make(map[string]*FriendSummary)
	order := make([]string, 0)

	for _, r := range inbox {
		s, ok := bySender[r.SenderID]
		if !ok {
			s = &FriendSummary{SenderID: r.SenderID, SenderName: names[r.SenderID]}
			bySender[r.SenderID] = s
			order = append(order, r.SenderID)
		}
		switch r.Status {
		case shared.StatusPending:
			s.Pending++
		case shared.StatusHit:
			s.Hit++
		case shared.StatusMiss:
			s.Miss++
		case shared.StatusConsumed:
			s.Consumed++
		}
		s.Total++
	}

	out := make([]FriendSummary, 0, len(order))
	for _, id := range order {
		out = append(out, *bySender[id])
	}
	// Most active senders first; sender id breaks ties deterministically
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].SenderID < out[j].SenderID
	})
	return out
}
