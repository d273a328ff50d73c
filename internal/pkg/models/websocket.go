package models

import "encoding/json"

// WSMessage is the envelope for every frame on /ws. Data is decoded
// according to Event.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// WSErrorMessage is sent with the error event, e.g. when a subscription
// is rejected
type WSErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WSSubscribeRequest asks to join or leave a ride channel (rides/{rideID}).
// It is echoed back as the subscribed/unsubscribed ack.
type WSSubscribeRequest struct {
	Channel string `json:"channel"`
}
