package application

import (
	"sort"
	"strings"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/domain"
)

const (
	topicSchemePrefix     = "wc:"
	topicURLSchemePrefix  = "wc://"
	topicDefaultVersion   = "2"
	topicVersionSeparator = "@"
)

// CanonicalTopic strips the protocol prefix and any trailing query. The version
// suffix and letter case are kept.
func CanonicalTopic(raw string) string {
	topic, _ := splitTopic(raw)
	return topic
}

// NormalizeTopic is the equality key for topics. It is never shown to users.
func NormalizeTopic(raw string) string {
	return strings.ToLower(CanonicalTopic(raw))
}

// TopicVariants lists every textual encoding the relay uses for the same session.
func TopicVariants(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	canonical, query := splitTopic(trimmed)
	if canonical == "" {
		return []string{trimmed}
	}

	bases := []string{canonical}
	bare := topicBase(canonical)
	if bare != canonical {
		bases = append(bases, bare)
	} else {
		bases = append(bases, bare+topicVersionSeparator+topicDefaultVersion)
	}

	seen := map[string]struct{}{}
	variants := make([]string, 0, len(bases)*4+1)
	add := func(value string) {
		if value == "" {
			return
		}
		if _, ok := seen[value]; ok {
			return
		}
		seen[value] = struct{}{}
		variants = append(variants, value)
	}

	add(trimmed)
	for _, base := range bases {
		for _, form := range []string{base, topicSchemePrefix + base} {
			add(form)
			if query != "" {
				add(form + "?" + query)
			}
		}
	}

	return variants
}

type TopicResolver struct {
	expectedPeer domain.PeerMetadata
}

func NewTopicResolver(expectedPeer domain.PeerMetadata) *TopicResolver {
	return &TopicResolver{expectedPeer: expectedPeer}
}

// ResolveActive returns the live session's own spelling of the candidate topic, or ""
// when no live session corresponds to it.
func (r *TopicResolver) ResolveActive(candidate string, sessions []domain.SessionEntry) string {
	if strings.TrimSpace(candidate) == "" {
		return r.mostRecentMatchingPeer(sessions)
	}

	variants := TopicVariants(candidate)
	exact := make(map[string]struct{}, len(variants)*2)
	for _, variant := range variants {
		for _, key := range []string{variant, NormalizeTopic(variant)} {
			if key != "" {
				exact[key] = struct{}{}
			}
		}
	}

	for _, session := range sessions {
		if _, ok := exact[session.Topic]; ok {
			return session.Topic
		}
		if normalized := NormalizeTopic(session.Topic); normalized != "" {
			if _, ok := exact[normalized]; ok {
				return session.Topic
			}
		}
	}

	base := topicBase(NormalizeTopic(candidate))
	if base == "" {
		return ""
	}
	for _, session := range sessions {
		if topicBase(NormalizeTopic(session.Topic)) == base {
			return session.Topic
		}
	}

	return ""
}

func (r *TopicResolver) mostRecentMatchingPeer(sessions []domain.SessionEntry) string {
	candidates := make([]domain.SessionEntry, 0, len(sessions))
	for _, session := range sessions {
		if CanonicalTopic(session.Topic) == "" {
			continue
		}
		if session.Peer.Matches(r.expectedPeer) {
			candidates = append(candidates, session)
		}
	}
	if len(candidates) == 0 {
		return ""
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})

	return candidates[0].Topic
}

func splitTopic(raw string) (topic string, query string) {
	topic = strings.TrimSpace(raw)
	if idx := strings.Index(topic, "?"); idx >= 0 {
		query = topic[idx+1:]
		topic = topic[:idx]
	}

	lower := strings.ToLower(topic)
	switch {
	case strings.HasPrefix(lower, topicURLSchemePrefix):
		topic = topic[len(topicURLSchemePrefix):]
	case strings.HasPrefix(lower, topicSchemePrefix):
		topic = topic[len(topicSchemePrefix):]
	}

	return strings.TrimSpace(topic), query
}

func topicBase(topic string) string {
	if idx := strings.Index(topic, topicVersionSeparator); idx >= 0 {
		return topic[:idx]
	}
	return topic
}
