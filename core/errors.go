package core

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount a positive amount is required
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrTokenNotAllowed token absent from the collateral registry
	ErrTokenNotAllowed = errors.New("token not allowed")
	// ErrRegistryMismatch construction lists do not line up
	ErrRegistryMismatch = errors.New("token and feed lists mismatch")
	// ErrTransferFailed underlying token move failed
	ErrTransferFailed = errors.New("transfer failed")
	// ErrMintFailed debt token mint reported failure
	ErrMintFailed = errors.New("mint failed")
	// ErrInsufficientCollateral redeeming or seizing more than deposited
	ErrInsufficientCollateral = errors.New("insufficient collateral")
	// ErrInsufficientDebt burning or covering more than minted
	ErrInsufficientDebt = errors.New("insufficient debt")
	// ErrExcessiveRepay liquidation covering more than the close factor allows
	ErrExcessiveRepay = errors.New("repay over close factor limit")
	// ErrHealthFactorOk liquidation attempted on a solvent vault
	ErrHealthFactorOk = errors.New("health factor ok")
	// ErrHealthFactorNotImproved liquidation did not raise the target's health factor
	ErrHealthFactorNotImproved = errors.New("health factor not improved")
	// ErrInvalidPrice oracle returned a non-positive price
	ErrInvalidPrice = errors.New("invalid price")
	// ErrStalePrice oracle quote older than the staleness window
	ErrStalePrice = errors.New("stale price")
	// ErrPriceNotAvailable no quote could be fetched at all
	ErrPriceNotAvailable = errors.New("price not available")
	// ErrReentrantCall a mutating action entered while another is in flight
	ErrReentrantCall = errors.New("reentrant call")
)

// HealthFactorError reports an account left below the minimum health factor.
type HealthFactorError struct {
	HealthFactor decimal.Decimal
}

func (e *HealthFactorError) Error() string {
	return fmt.Sprintf("health factor broken: %s", e.HealthFactor)
}

// IsHealthFactorBroken reports whether err is a HealthFactorError.
func IsHealthFactorBroken(err error) bool {
	var hfe *HealthFactorError
	return errors.As(err, &hfe)
}

// ErrorCode numeric code for the api surface
type ErrorCode int

const (
	// ErrCodeUnknown unknown
	ErrCodeUnknown ErrorCode = 100000
	// ErrCodeInvalidAmount invalid amount
	ErrCodeInvalidAmount ErrorCode = 100101
	// ErrCodeTokenNotAllowed token not allowed
	ErrCodeTokenNotAllowed ErrorCode = 100102
	// ErrCodeTransferFailed transfer failed
	ErrCodeTransferFailed ErrorCode = 100103
	// ErrCodeMintFailed mint failed
	ErrCodeMintFailed ErrorCode = 100104
	// ErrCodeInsufficientCollateral insufficient collateral
	ErrCodeInsufficientCollateral ErrorCode = 100105
	// ErrCodeInsufficientDebt insufficient debt
	ErrCodeInsufficientDebt ErrorCode = 100106
	// ErrCodeHealthFactorBroken health factor broken
	ErrCodeHealthFactorBroken ErrorCode = 100107
	// ErrCodeHealthFactorOk health factor ok
	ErrCodeHealthFactorOk ErrorCode = 100108
	// ErrCodeHealthFactorNotImproved health factor not improved
	ErrCodeHealthFactorNotImproved ErrorCode = 100109
	// ErrCodeInvalidPrice invalid price
	ErrCodeInvalidPrice ErrorCode = 100110
	// ErrCodeStalePrice stale price
	ErrCodeStalePrice ErrorCode = 100111
	// ErrCodeReentrantCall reentrant call
	ErrCodeReentrantCall ErrorCode = 100112
	// ErrCodeExcessiveRepay repay over close factor limit
	ErrCodeExcessiveRepay ErrorCode = 100113
)

// Code maps an engine error to its api error code.
func Code(err error) ErrorCode {
	if IsHealthFactorBroken(err) {
		return ErrCodeHealthFactorBroken
	}

	switch {
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrRegistryMismatch):
		return ErrCodeInvalidAmount
	case errors.Is(err, ErrTokenNotAllowed):
		return ErrCodeTokenNotAllowed
	case errors.Is(err, ErrTransferFailed):
		return ErrCodeTransferFailed
	case errors.Is(err, ErrMintFailed):
		return ErrCodeMintFailed
	case errors.Is(err, ErrInsufficientCollateral):
		return ErrCodeInsufficientCollateral
	case errors.Is(err, ErrInsufficientDebt):
		return ErrCodeInsufficientDebt
	case errors.Is(err, ErrExcessiveRepay):
		return ErrCodeExcessiveRepay
	case errors.Is(err, ErrHealthFactorOk):
		return ErrCodeHealthFactorOk
	case errors.Is(err, ErrHealthFactorNotImproved):
		return ErrCodeHealthFactorNotImproved
	case errors.Is(err, ErrInvalidPrice):
		return ErrCodeInvalidPrice
	case errors.Is(err, ErrStalePrice), errors.Is(err, ErrPriceNotAvailable):
		return ErrCodeStalePrice
	case errors.Is(err, ErrReentrantCall):
		return ErrCodeReentrantCall
	default:
		return ErrCodeUnknown
	}
}
