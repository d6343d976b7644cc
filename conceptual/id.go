package conceptual

// PostSlug identifies a blog post, eg. "kaniksu-loop".
type PostSlug string

func (s PostSlug) String() string {
	return string(s)
}

func (s PostSlug) Empty() bool {
	return s == ""
}
