// internal/app/store/queries/participation/participation.go

// Package participation converts invitations and signup requests into
// participants. The conversion touches two collections and must not
// leave a profile both invited and participating, so it runs in a
// transaction where the deployment allows and falls back to inserting
// the participant before clearing the request: the unique participant
// index makes a crashed retry converge instead of duplicating.
package participation

import (
	"context"
	"errors"

	"github.com/presently-app/presently/internal/app/store/invitations"
	"github.com/presently-app/presently/internal/app/store/participants"
	"github.com/presently-app/presently/internal/app/store/signups"
	"github.com/presently-app/presently/internal/app/system/apperr"
	"github.com/presently-app/presently/internal/app/system/txn"
	"github.com/presently-app/presently/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Query struct {
	client       *mongo.Client
	participants *participantstore.Store
	invitations  *invitationstore.Store
	signups      *signupstore.Store
}

func New(db *mongo.Database) *Query {
	return &Query{
		client:       db.Client(),
		participants: participantstore.New(db),
		invitations:  invitationstore.New(db),
		signups:      signupstore.New(db),
	}
}

// AcceptInvitation turns the recipient's invitation into a participant
// row and removes the invitation. Only the recipient may accept.
func (q *Query) AcceptInvitation(ctx context.Context, invitationID, caller primitive.ObjectID) (models.Participant, error) {
	inv, err := q.invitations.GetByID(ctx, invitationID)
	if err != nil {
		return models.Participant{}, err
	}
	if inv.Recipient != caller {
		return models.Participant{}, apperr.NotFound("invitation")
	}
	return q.join(ctx, inv.OccasionID, inv.Recipient)
}

// IgnoreInvitation marks the invitation ignored. The recipient stops
// seeing it; the sender keeps seeing it as pending. Only the recipient
// may ignore.
func (q *Query) IgnoreInvitation(ctx context.Context, invitationID, caller primitive.ObjectID) error {
	inv, err := q.invitations.GetByID(ctx, invitationID)
	if err != nil {
		return err
	}
	if inv.Recipient != caller {
		return apperr.NotFound("invitation")
	}
	return q.invitations.SetStatus(ctx, invitationID, models.InvitationIgnored)
}

// ApproveSignup turns a signup request into a participant row and
// removes the request. The handler has already verified the caller is
// the occasion's organizer.
func (q *Query) ApproveSignup(ctx context.Context, requestID primitive.ObjectID) (models.Participant, error) {
	req, err := q.signups.GetByID(ctx, requestID)
	if err != nil {
		return models.Participant{}, err
	}
	return q.join(ctx, req.OccasionID, req.ProfileID)
}

// join inserts the participant and clears any invitation or signup
// request the profile held for the occasion, as one unit.
func (q *Query) join(ctx context.Context, occasionID, profileID primitive.ObjectID) (models.Participant, error) {
	var p models.Participant
	run := func(ctx context.Context) error {
		var err error
		p, err = q.participants.Insert(ctx, occasionID, profileID)
		if err != nil {
			return err
		}
		if err := q.invitations.DeleteForPair(ctx, occasionID, profileID); err != nil {
			return err
		}
		return q.signups.DeleteForPair(ctx, occasionID, profileID)
	}

	err := txn.WithTransaction(ctx, q.client, run)
	if txn.IsNotSupported(err) {
		err = run(ctx)
	}
	if errors.Is(err, apperr.ErrConflict) {
		// Already a participant, a prior attempt got through. Finish
		// the cleanup so the stale invitation or request disappears.
		if derr := q.invitations.DeleteForPair(ctx, occasionID, profileID); derr != nil {
			return models.Participant{}, derr
		}
		if derr := q.signups.DeleteForPair(ctx, occasionID, profileID); derr != nil {
			return models.Participant{}, derr
		}
		return q.participants.Get(ctx, occasionID, profileID)
	}
	if err != nil {
		return models.Participant{}, err
	}
	return p, nil
}

// Leave removes the caller's own participant row. Gifts they suggested
// and claims they made stay; only the membership goes. The organizer
// cannot leave their own occasion.
func (q *Query) Leave(ctx context.Context, occasionID, profileID, organizer primitive.ObjectID) error {
	if profileID == organizer {
		return apperr.Forbidden("the organizer cannot leave their own occasion")
	}
	return q.participants.Remove(ctx, occasionID, profileID)
}
