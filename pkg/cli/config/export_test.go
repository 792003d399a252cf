package config

// NewScoringForTest creates a Scoring config for testing purposes
func NewScoringForTest(path string) *Scoring {
	return &Scoring{path: path}
}

// NewNotifyForTest creates a Notify config for testing purposes
func NewNotifyForTest(token, channel string) *Notify {
	return &Notify{slackToken: token, slackChannel: channel}
}

// NewAuthForTest creates an Auth config for testing purposes
func NewAuthForTest(jwksURL, issuer, audience string, noAuth bool) *Auth {
	return &Auth{jwksURL: jwksURL, issuer: issuer, audience: audience, noAuth: noAuth}
}
