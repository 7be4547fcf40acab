package model

type MediaType string

const (
	MediaTypeUnknown MediaType = "unknown"
	MediaTypeAudio   MediaType = "audio"
	MediaTypeVideo   MediaType = "video"
)

type StreamType string

const (
	StreamTypeUnknown  StreamType = "unknown"
	StreamTypeOnDemand StreamType = "on-demand"
	StreamTypeLive     StreamType = "live"
	StreamTypeLLLive   StreamType = "ll-live"
)

type ProviderType string

const (
	ProviderTypeNone    ProviderType = ""
	ProviderTypeHTML5   ProviderType = "html5"
	ProviderTypeHLS     ProviderType = "hls"
	ProviderTypeDASH    ProviderType = "dash"
	ProviderTypeYouTube ProviderType = "youtube"
	ProviderTypeVimeo   ProviderType = "vimeo"
)

type LoadingStatus string

const (
	LoadingIdle    LoadingStatus = "idle"
	LoadingActive  LoadingStatus = "loading"
	LoadingLoaded  LoadingStatus = "loaded"
	LoadingErrored LoadingStatus = "error"
)

// Availability is a three-valued capability fact. "unavailable" means a
// prerequisite is missing (typically no active backend yet), "unsupported"
// means the capability is absent or known non-functional on this platform,
// and "available" means it can be used right now. UI layers hide unsupported
// capabilities but merely disable unavailable ones, so the distinction must
// survive every layer.
type Availability string

const (
	Available   Availability = "available"
	Unavailable Availability = "unavailable"
	Unsupported Availability = "unsupported"
)
