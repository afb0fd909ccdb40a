package provider

import (
	"github.com/google/wire"
	"github.com/xh-polaris/chat-relay/biz/application/service"
	"github.com/xh-polaris/chat-relay/biz/domain/hub"
	"github.com/xh-polaris/chat-relay/biz/domain/presence"
	"github.com/xh-polaris/chat-relay/biz/domain/relay"
	"github.com/xh-polaris/chat-relay/biz/domain/token"
	"github.com/xh-polaris/chat-relay/biz/infra/config"
	"github.com/xh-polaris/chat-relay/biz/infra/mapper/conversation"
	"github.com/xh-polaris/chat-relay/biz/infra/mapper/message"
)

var provider *Provider

func Init() {
	var err error
	provider, err = NewProvider()
	if err != nil {
		panic(err)
	}
}

// Provider 提供controller依赖的对象
type Provider struct {
	Config              *config.Config
	Hub                 *hub.Hub
	ConversationService service.IConversationService
	SystemService       service.ISystemService
	ChatService         service.IChatService
}

func Get() *Provider {
	return provider
}

var ApplicationSet = wire.NewSet(
	service.ConversationServiceSet,
	service.SystemServiceSet,
	service.ChatServiceSet,
)

var DomainSet = wire.NewSet(
	token.NewService,
	wire.Bind(new(token.Verifier), new(*token.Service)),
	presence.NewRegistry,
	hub.NewHub,
	relay.NewRelay,
)

var InfraSet = wire.NewSet(
	config.NewConfig,
	conversation.NewConversationMongoMapper,
	message.NewMessageMongoMapper,
)

var AllProvider = wire.NewSet(
	ApplicationSet,
	DomainSet,
	InfraSet,
)
