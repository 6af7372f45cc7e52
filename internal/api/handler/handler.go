package handler

import (
	"ridechat/backend/internal/chathub"
	"ridechat/backend/internal/safety"
	"ridechat/backend/internal/storage"
)

// Handler carries the dependencies of the HTTP surface.
type Handler struct {
	Hub     *chathub.Hub
	Storage storage.Storage
	Safety  *safety.Service
}

func NewHandler(hub *chathub.Hub, s storage.Storage, sf *safety.Service) *Handler {
	return &Handler{Hub: hub, Storage: s, Safety: sf}
}
