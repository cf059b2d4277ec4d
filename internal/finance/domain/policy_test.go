package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var recordActions = []Action{ActionView, ActionUpdate, ActionDelete, ActionRestore, ActionForceDelete}

func TestCan_OwnerHasFullAccess(t *testing.T) {
	owner := uuid.NewString()
	records := []Owned{
		&Transaction{ID: uuid.New(), UserID: owner},
		&Budget{ID: uuid.New(), UserID: owner},
		&Category{ID: uuid.New(), UserID: &owner},
	}

	for _, record := range records {
		for _, action := range recordActions {
			assert.True(t, Can(owner, action, record), "owner should be allowed to %s", action)
		}
	}
}

func TestCan_ForeignActorIsDenied(t *testing.T) {
	owner := uuid.NewString()
	stranger := uuid.NewString()
	records := []Owned{
		&Transaction{ID: uuid.New(), UserID: owner},
		&Budget{ID: uuid.New(), UserID: owner},
		&Category{ID: uuid.New(), UserID: &owner},
	}

	for _, record := range records {
		for _, action := range recordActions {
			assert.False(t, Can(stranger, action, record), "stranger should not be allowed to %s", action)
		}
	}
}

func TestCan_DefaultCategoryIsReadOnlyForEveryone(t *testing.T) {
	shared := &Category{ID: uuid.New(), Name: "Groceries", Type: TypeExpense, IsDefault: true}
	actor := uuid.NewString()

	assert.True(t, Can(actor, ActionView, shared))
	for _, action := range []Action{ActionUpdate, ActionDelete, ActionRestore, ActionForceDelete} {
		assert.False(t, Can(actor, action, shared), "default category must not be mutable via %s", action)
	}
}

func TestCanViewAnyAndCanCreate(t *testing.T) {
	actor := uuid.NewString()
	assert.True(t, CanViewAny(actor))
	assert.True(t, CanCreate(actor))
}
