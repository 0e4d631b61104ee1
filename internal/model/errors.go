package model

import (
	"errors"
	"fmt"
)

// ErrContractViolation marks a call made in the wrong turn-controller state.
// Gameplay mistakes never produce it; they are reported as OutcomeRejected.
var ErrContractViolation = errors.New("contract violation")

var (
	ErrNoPromotionPending     = fmt.Errorf("%w: no promotion pending", ErrContractViolation)
	ErrPromotionPieceMismatch = fmt.Errorf("%w: piece is not the one awaiting promotion", ErrContractViolation)
	ErrInvalidPromotion       = fmt.Errorf("%w: promotion must be queen, rook, knight or bishop", ErrContractViolation)
)

// ErrInvalidFEN is wrapped by every position setup failure.
var ErrInvalidFEN = errors.New("invalid FEN")
