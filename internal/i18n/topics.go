package i18n

type Topic string

const (
	TopicOnThisDay     Topic = "onThisDay"
	TopicFeatured      Topic = "featured"
	TopicScience       Topic = "science"
	TopicCulture       Topic = "culture"
	TopicHistory       Topic = "history"
	TopicGeography     Topic = "geography"
	TopicSociety       Topic = "society"
	TopicSports        Topic = "sports"
	TopicEntertainment Topic = "entertainment"
	TopicArchitecture  Topic = "architecture"
)

var topics = []Topic{
	TopicOnThisDay,
	TopicFeatured,
	TopicScience,
	TopicCulture,
	TopicHistory,
	TopicGeography,
	TopicSociety,
	TopicSports,
	TopicEntertainment,
	TopicArchitecture,
}

// Topics returns the fixed topic set in tab order.
func Topics() []Topic {
	out := make([]Topic, len(topics))
	copy(out, topics)
	return out
}

func ParseTopic(s string) (Topic, bool) {
	for _, t := range topics {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

func (t Topic) Label(lang Language) string {
	return T(lang, "topics."+string(t))
}

// TopicForLabel maps a topic label of any language back to its topic.
func TopicForLabel(label string) (Topic, bool) {
	if label == "" {
		return "", false
	}
	for _, lang := range Languages() {
		for _, t := range topics {
			if t.Label(lang) == label {
				return t, true
			}
		}
	}
	return "", false
}

// Next returns the topic after t, wrapping around. delta may be negative.
func (t Topic) Next(delta int) Topic {
	idx := 0
	for i, candidate := range topics {
		if candidate == t {
			idx = i
			break
		}
	}
	n := len(topics)
	return topics[((idx+delta)%n+n)%n]
}
