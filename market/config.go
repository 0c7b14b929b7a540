package market

import "github.com/holiman/uint256"

// Config is the marketplace's operational parameter set. It is mutated only
// through UpdateConfigAction, as a sparse patch.
type Config struct {
	GasForCreation         uint64
	GasForMint             uint64
	GasForTransferToken    uint64
	GasForCloseAuction     uint64
	GasForDeleteCollection uint64
	GasForGetInfo          uint64

	// TimeBetweenCreateCollections is the per-creator cooldown window in
	// milliseconds. Admins are exempt.
	TimeBetweenCreateCollections uint64

	FeePerUploadedFile *uint256.Int

	// Royalties are in basis points of the traded value.
	RoyaltyToMarketplaceForTrade uint16
	RoyaltyToMarketplaceForMint  uint16

	MinimumTransferValue *uint256.Int

	// MsInBlock converts block-denominated durations to absolute time.
	MsInBlock uint32
}

// DefaultConfig returns production-shaped defaults.
func DefaultConfig() Config {
	return Config{
		GasForCreation:               200_000_000_000,
		GasForMint:                   100_000_000_000,
		GasForTransferToken:          5_000_000_000,
		GasForCloseAuction:           10_000_000_000,
		GasForDeleteCollection:       5_000_000_000,
		GasForGetInfo:                5_000_000_000,
		TimeBetweenCreateCollections: 3_600_000, // one hour
		FeePerUploadedFile:           uint256.NewInt(257_142_857_100),
		RoyaltyToMarketplaceForTrade: 200,
		RoyaltyToMarketplaceForMint:  200,
		MinimumTransferValue:         uint256.NewInt(10_300_000_000_000),
		MsInBlock:                    3_000,
	}
}

// ConfigPatch updates only its non-nil fields.
type ConfigPatch struct {
	GasForCreation               *uint64
	GasForMint                   *uint64
	GasForTransferToken          *uint64
	GasForCloseAuction           *uint64
	GasForDeleteCollection       *uint64
	GasForGetInfo                *uint64
	TimeBetweenCreateCollections *uint64
	FeePerUploadedFile           *uint256.Int
	RoyaltyToMarketplaceForTrade *uint16
	RoyaltyToMarketplaceForMint  *uint16
	MinimumTransferValue         *uint256.Int
	MsInBlock                    *uint32
}

func (p ConfigPatch) apply(c *Config) {
	if p.GasForCreation != nil {
		c.GasForCreation = *p.GasForCreation
	}
	if p.GasForMint != nil {
		c.GasForMint = *p.GasForMint
	}
	if p.GasForTransferToken != nil {
		c.GasForTransferToken = *p.GasForTransferToken
	}
	if p.GasForCloseAuction != nil {
		c.GasForCloseAuction = *p.GasForCloseAuction
	}
	if p.GasForDeleteCollection != nil {
		c.GasForDeleteCollection = *p.GasForDeleteCollection
	}
	if p.GasForGetInfo != nil {
		c.GasForGetInfo = *p.GasForGetInfo
	}
	if p.TimeBetweenCreateCollections != nil {
		c.TimeBetweenCreateCollections = *p.TimeBetweenCreateCollections
	}
	if p.FeePerUploadedFile != nil {
		c.FeePerUploadedFile = p.FeePerUploadedFile.Clone()
	}
	if p.RoyaltyToMarketplaceForTrade != nil {
		c.RoyaltyToMarketplaceForTrade = *p.RoyaltyToMarketplaceForTrade
	}
	if p.RoyaltyToMarketplaceForMint != nil {
		c.RoyaltyToMarketplaceForMint = *p.RoyaltyToMarketplaceForMint
	}
	if p.MinimumTransferValue != nil {
		c.MinimumTransferValue = p.MinimumTransferValue.Clone()
	}
	if p.MsInBlock != nil {
		c.MsInBlock = *p.MsInBlock
	}
}
