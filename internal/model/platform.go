package model

// Platform represents one external identity service against which a username
// can be checked.
//
// URLTemplate contains exactly one "{}" placeholder that receives the
// percent-encoded username. An empty template means no automatable profile
// URL exists for the service (app-only or search-engine-only); such
// platforms are listed for completeness but skipped by the search sweep.
type Platform struct {
	// Name is the unique, case-sensitive platform identifier.
	Name string `json:"name"`

	// URLTemplate is the profile URL pattern, or "" when no check exists.
	URLTemplate string `json:"url_template,omitempty"`
}

// Probeable reports whether the platform has a profile URL template.
func (p Platform) Probeable() bool {
	return p.URLTemplate != ""
}

// platforms is the registry of supported platforms in definition order.
// Adding or removing a platform is a data change here, not a logic change:
// probing behavior is uniform (template substitution plus generic
// classification), so no per-platform code exists.
//
// The selection is internationally focused: it covers the major Russian,
// Chinese, and Asian networks alongside the usual western services.
var platforms = []Platform{
	{Name: "VK", URLTemplate: "https://vk.com/{}"},
	{Name: "OK", URLTemplate: "https://ok.ru/{}"},
	{Name: "Telegram", URLTemplate: "https://t.me/{}"},
	{Name: "WeChat"},  // no public profile URL
	{Name: "Line"},    // app only
	{Name: "Weibo", URLTemplate: "https://weibo.com/{}"},
	{Name: "Douyin"}, // app only
	{Name: "QQ"},     // requires app
	{Name: "Baidu", URLTemplate: "https://tieba.baidu.com/home/main?un={}"},
	{Name: "Yandex"},  // search engine
	{Name: "Mail.ru"}, // email service
	{Name: "Viber"},   // app only
	{Name: "WhatsApp"}, // app only
	{Name: "Skype", URLTemplate: "https://web.skype.com/{}"},
	{Name: "500px", URLTemplate: "https://500px.com/p/{}"},
	{Name: "AboutMe", URLTemplate: "https://about.me/{}"},
	{Name: "DeviantArt", URLTemplate: "https://www.deviantart.com/{}"},
	{Name: "Flickr", URLTemplate: "https://www.flickr.com/people/{}"},
	{Name: "GitHub", URLTemplate: "https://github.com/{}"},
	{Name: "GitLab", URLTemplate: "https://gitlab.com/{}"},
	{Name: "Instagram", URLTemplate: "https://www.instagram.com/{}"},
	{Name: "LinkedIn", URLTemplate: "https://www.linkedin.com/in/{}"},
	{Name: "Medium", URLTemplate: "https://medium.com/@{}"},
	{Name: "Pinterest", URLTemplate: "https://www.pinterest.com/{}"},
	{Name: "Reddit", URLTemplate: "https://www.reddit.com/user/{}"},
	{Name: "Snapchat", URLTemplate: "https://www.snapchat.com/add/{}"},
	{Name: "SoundCloud", URLTemplate: "https://soundcloud.com/{}"},
	{Name: "Spotify", URLTemplate: "https://open.spotify.com/user/{}"},
	{Name: "Steam", URLTemplate: "https://steamcommunity.com/id/{}"},
	{Name: "TikTok", URLTemplate: "https://www.tiktok.com/@{}"},
	{Name: "Twitch", URLTemplate: "https://www.twitch.tv/{}"},
	{Name: "Twitter", URLTemplate: "https://twitter.com/{}"},
	{Name: "Vimeo", URLTemplate: "https://vimeo.com/{}"},
	{Name: "YouTube", URLTemplate: "https://www.youtube.com/@{}"},
	{Name: "Behance", URLTemplate: "https://www.behance.net/{}"},
	{Name: "Dribbble", URLTemplate: "https://dribbble.com/{}"},
	{Name: "Tumblr", URLTemplate: "https://{}.tumblr.com"},
	{Name: "WordPress", URLTemplate: "https://{}.wordpress.com"},
}

// platformIndex provides case-sensitive name lookup into the registry.
var platformIndex = buildPlatformIndex()

func buildPlatformIndex() map[string]Platform {
	index := make(map[string]Platform, len(platforms))
	for _, p := range platforms {
		index[p.Name] = p
	}
	return index
}

// Platforms returns all registered platforms in definition order.
// The returned slice is a copy; the registry itself is immutable for the
// process lifetime.
func Platforms() []Platform {
	out := make([]Platform, len(platforms))
	copy(out, platforms)
	return out
}

// LookupPlatform returns the platform registered under the given name.
// Lookup is exact and case-sensitive; unknown names return ok=false and
// are silently skipped by callers rather than treated as errors.
func LookupPlatform(name string) (Platform, bool) {
	p, ok := platformIndex[name]
	return p, ok
}

// platformGroups are named platform subsets selectable from the CLI.
// Group members missing from the registry (Facebook, Stack Overflow) are
// dropped by the search sweep like any other unknown name.
var platformGroups = map[string][]string{
	"international": {"VK", "OK", "Telegram", "Weibo", "Baidu", "Skype"},
	"social":        {"Instagram", "Twitter", "TikTok", "Facebook", "Snapchat", "VK"},
	"developer":     {"GitHub", "GitLab", "Stack Overflow", "Behance", "Dribbble"},
}

// PlatformGroup returns the platform names belonging to a named group.
func PlatformGroup(name string) ([]string, bool) {
	members, ok := platformGroups[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(members))
	copy(out, members)
	return out, true
}

// PlatformGroupNames returns the available group names in stable order.
func PlatformGroupNames() []string {
	return []string{"international", "social", "developer"}
}
