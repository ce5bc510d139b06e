package gameserver

import (
	"context"
	"log/slog"
)

// OnDisconnection handles a closed connection: the client is unregistered,
// its account saved and its creatures released. Safe to call more than once.
func OnDisconnection(ctx context.Context, client *ChannelClient, manager *ClientManager) {
	accountID := client.AccountID()
	if accountID != "" && manager != nil {
		manager.Unregister(accountID, client)
	}

	client.CloseAsync()
	client.CleanUp(ctx)

	if accountID != "" {
		slog.Info("client disconnected", "account", accountID, "client", client.IP())
	}
}
