package run

import (
	"strings"

	"github.com/iosweep/iosweep/model"
)

// ResolveRoles classifies the provisioned machines into exactly one client
// and one server by a case-insensitive substring match on their names.
// Anything other than exactly one match per role is a configuration error;
// there is nothing to retry.
func ResolveRoles(machines []model.Machine) (client, server model.Machine, err error) {
	var clients, servers []model.Machine
	for _, m := range machines {
		name := strings.ToLower(m.Name)
		isClient := strings.Contains(name, string(model.RoleClient))
		isServer := strings.Contains(name, string(model.RoleServer))
		if isClient && isServer {
			return client, server, configErrorf("machine %q matches both the client and server roles", m.Name)
		}
		if isClient {
			clients = append(clients, m)
		}
		if isServer {
			servers = append(servers, m)
		}
	}

	if len(clients) != 1 {
		return client, server, configErrorf("expected exactly one client machine, found %d", len(clients))
	}
	if len(servers) != 1 {
		return client, server, configErrorf("expected exactly one server machine, found %d", len(servers))
	}

	return clients[0], servers[0], nil
}
