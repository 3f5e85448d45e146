package domain

// PushMessage is the platform-agnostic request handed to the push delivery client.
type PushMessage struct {
	Token        string            `json:"token"`
	Notification PushNotification  `json:"notification"`
	Data         map[string]string `json:"data"`
	Android      AndroidConfig     `json:"android"`
	APNS         APNSConfig        `json:"apns"`
}

type PushNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type AndroidConfig struct {
	Notification AndroidNotification `json:"notification"`
}

type AndroidNotification struct {
	Icon      string `json:"icon"`
	Color     string `json:"color"`
	Sound     string `json:"sound"`
	ChannelID string `json:"channel_id"`
	Priority  string `json:"priority"`
}

type APNSConfig struct {
	Payload APNSPayload `json:"payload"`
}

type APNSPayload struct {
	Aps Aps `json:"aps"`
}

type Aps struct {
	Alert PushNotification `json:"alert"`
	Sound string           `json:"sound"`
	Badge int              `json:"badge"`
}
