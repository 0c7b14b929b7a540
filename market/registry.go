package market

import (
	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-market/actor"
	"github.com/pflow-xyz/go-market/collection"
)

func (m *Marketplace) addCollectionType(c *actor.Context, a AddCollectionTypeAction) (any, error) {
	if err := m.checkAdmin(c.Source()); err != nil {
		return nil, err
	}
	m.types[a.TypeName] = TypeCollection{
		CodeName:    a.CodeName,
		MetaLink:    a.MetaLink,
		Description: a.Description,
	}
	log.Info("collection type registered", "type", a.TypeName, "code", a.CodeName)
	return CollectionTypeAddedEvent{
		CodeName:    a.CodeName,
		MetaLink:    a.MetaLink,
		TypeName:    a.TypeName,
		Description: a.Description,
	}, nil
}

func (m *Marketplace) createCollection(c *actor.Context, a CreateCollectionAction) (any, error) {
	src := c.Source()
	if !m.isAdmin(src) {
		if last, ok := m.timeCreation[src]; ok && c.Now()-last < m.config.TimeBetweenCreateCollections {
			return refund(c, ErrCooldownActive)
		}
	}
	ti, ok := m.types[a.TypeName]
	if !ok {
		return refund(c, ErrUnknownCollectionType)
	}

	// The upload fee is per media file; it only applies to payloads whose
	// link count the marketplace can see. The attached value, fee included,
	// travels on to the spawned collection.
	if in, ok := a.Payload.(collection.Init); ok && !m.config.FeePerUploadedFile.IsZero() {
		fee := new(uint256.Int)
		if _, over := fee.MulOverflow(m.config.FeePerUploadedFile, uint256.NewInt(uint64(len(in.ImgLinks)))); over {
			return refund(c, ErrArithmeticOverflow)
		}
		if c.Value().Lt(fee) {
			return refund(c, ErrBelowMinimumValue)
		}
	}

	// Stamp the cooldown before suspending on the spawn: a second request
	// from the same creator arriving mid-spawn must see it. Rolled back if
	// the spawn fails.
	prev, hadPrev := m.timeCreation[src]
	m.timeCreation[src] = c.Now()

	addr, err := c.Spawn(ti.CodeName, a.Payload, c.Value(), m.config.GasForCreation)
	if err != nil {
		if hadPrev {
			m.timeCreation[src] = prev
		} else {
			delete(m.timeCreation, src)
		}
		log.Warn("collection spawn failed", "type", a.TypeName, "creator", src, "err", err)
		return refund(c, ErrCreationFailed)
	}

	m.collections[addr] = CollectionRecord{TypeName: a.TypeName, Owner: src}
	m.timeCreation[src] = c.Now()
	log.Info("collection created", "type", a.TypeName, "address", addr, "creator", src)
	return CollectionCreatedEvent{TypeName: a.TypeName, Collection: addr}, nil
}

func (m *Marketplace) deleteCollection(c *actor.Context, a DeleteCollectionAction) (any, error) {
	rec, ok := m.collections[a.Collection]
	if !ok {
		return nil, ErrUnknownCollection
	}
	src := c.Source()

	switch {
	case m.isAdmin(src):
		delete(m.collections, a.Collection)

	case rec.Owner == src:
		out, err := c.Call(a.Collection, collection.CanDeleteAction{}, nil, m.config.GasForDeleteCollection)
		if err != nil {
			return nil, ErrCollectionCallFailed
		}
		answer, ok := out.(collection.CanDeleteEvent)
		if !ok {
			return nil, ErrProtocolViolation
		}
		if !answer.Answer {
			return nil, ErrAccessDenied
		}
		// An admin may have removed the record during the round-trip.
		if _, still := m.collections[a.Collection]; !still {
			return nil, ErrUnknownCollection
		}
		delete(m.collections, a.Collection)

	default:
		return nil, ErrAccessDenied
	}

	log.Info("collection deleted", "address", a.Collection, "by", src)
	return CollectionDeletedEvent{Collection: a.Collection}, nil
}
