package market

import (
	"github.com/pflow-xyz/go-market/actor"
)

func (m *Marketplace) addAdmins(c *actor.Context, a AddAdminsAction) (any, error) {
	if err := m.checkAdmin(c.Source()); err != nil {
		return nil, err
	}
	for _, u := range a.Users {
		if !m.isAdmin(u) {
			m.admins = append(m.admins, u)
		}
	}
	return AdminsAddedEvent{Users: a.Users}, nil
}

func (m *Marketplace) removeAdmin(c *actor.Context, a RemoveAdminAction) (any, error) {
	if err := m.checkAdmin(c.Source()); err != nil {
		return nil, err
	}
	kept := m.admins[:0]
	for _, adm := range m.admins {
		if adm != a.User {
			kept = append(kept, adm)
		}
	}
	m.admins = kept
	return AdminRemovedEvent{User: a.User}, nil
}

func (m *Marketplace) updateConfig(c *actor.Context, a UpdateConfigAction) (any, error) {
	if err := m.checkAdmin(c.Source()); err != nil {
		return nil, err
	}
	a.Patch.apply(&m.config)
	log.Info("config updated", "by", c.Source())
	return ConfigUpdatedEvent{Patch: a.Patch}, nil
}

// withdrawBalance pays accumulated royalties out of the marketplace's own
// balance to the requesting admin.
func (m *Marketplace) withdrawBalance(c *actor.Context, a WithdrawBalanceAction) (any, error) {
	src := c.Source()
	if err := m.checkAdmin(src); err != nil {
		return nil, err
	}
	if a.Value == nil || a.Value.Lt(m.config.MinimumTransferValue) {
		return nil, ErrBelowMinimumValue
	}
	if err := c.Send(src, nil, a.Value); err != nil {
		// More than the treasury holds, or the runtime is going down.
		return nil, ErrValueMismatch
	}
	return BalanceWithdrawnEvent{Value: a.Value.Clone()}, nil
}
