package snapshot

import (
	"context"
	"fmt"

	"github.com/irmandades/ghala-backend/internal/events"
	"github.com/irmandades/ghala-backend/internal/inventory"
	"github.com/irmandades/ghala-backend/internal/locations"
	"github.com/irmandades/ghala-backend/internal/members"
	"github.com/irmandades/ghala-backend/internal/messages"
	"github.com/irmandades/ghala-backend/internal/treasury"
	"github.com/irmandades/ghala-backend/pkg/db/models"
	pkgerrors "github.com/irmandades/ghala-backend/pkg/errors"
)

// Snapshot is the full dashboard state in the export shape clients persist
// locally. Key names are part of that contract.
type Snapshot struct {
	Members      []models.Member      `json:"members"`
	Inventory    []models.Product     `json:"inventory"`
	Events       []models.Event       `json:"events"`
	Transactions []models.Transaction `json:"transactions"`
	UserMessages []models.UserMessage `json:"userMessages"`
	Locations    []models.Location    `json:"locations"`
}

// Assembler reads every dashboard table into one snapshot.
type Assembler struct {
	members   members.Repository
	products  inventory.Repository
	events    events.Repository
	treasury  treasury.Repository
	messages  messages.Repository
	locations locations.Repository
}

// NewAssembler wires a snapshot assembler over the table repositories.
func NewAssembler(
	membersRepo members.Repository,
	productsRepo inventory.Repository,
	eventsRepo events.Repository,
	treasuryRepo treasury.Repository,
	messagesRepo messages.Repository,
	locationsRepo locations.Repository,
) (*Assembler, error) {
	if membersRepo == nil || productsRepo == nil || eventsRepo == nil ||
		treasuryRepo == nil || messagesRepo == nil || locationsRepo == nil {
		return nil, fmt.Errorf("all snapshot repositories required")
	}
	return &Assembler{
		members:   membersRepo,
		products:  productsRepo,
		events:    eventsRepo,
		treasury:  treasuryRepo,
		messages:  messagesRepo,
		locations: locationsRepo,
	}, nil
}

// Assemble reads all tables. Slices are never nil so the export always
// serializes every key as an array.
func (a *Assembler) Assemble(ctx context.Context) (*Snapshot, error) {
	memberRows, err := a.members.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "snapshot members")
	}
	productRows, err := a.products.List(ctx, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "snapshot inventory")
	}
	eventRows, err := a.events.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "snapshot events")
	}
	transactionRows, err := a.treasury.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "snapshot transactions")
	}
	messageRows, err := a.messages.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "snapshot messages")
	}
	locationRows, err := a.locations.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "snapshot locations")
	}

	snap := &Snapshot{
		Members:      memberRows,
		Inventory:    productRows,
		Events:       eventRows,
		Transactions: transactionRows,
		UserMessages: messageRows,
		Locations:    locationRows,
	}
	if snap.Members == nil {
		snap.Members = []models.Member{}
	}
	if snap.Inventory == nil {
		snap.Inventory = []models.Product{}
	}
	if snap.Events == nil {
		snap.Events = []models.Event{}
	}
	if snap.Transactions == nil {
		snap.Transactions = []models.Transaction{}
	}
	if snap.UserMessages == nil {
		snap.UserMessages = []models.UserMessage{}
	}
	if snap.Locations == nil {
		snap.Locations = []models.Location{}
	}
	return snap, nil
}
