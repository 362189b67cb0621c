package service

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-ir/storefront-service/internal/domain"
)

func (f *fixture) openTicket(t *testing.T, owner *domain.User, subject string) *domain.Ticket {
	t.Helper()
	ticket, err := f.tickets.CreateTicket(f.ctx, owner, TicketCreateInput{Subject: subject, Description: "details"})
	require.NoError(t, err)
	return ticket
}

func TestCreateTicketDefaultsPriority(t *testing.T) {
	f := newFixture(t)
	ticket, err := f.tickets.CreateTicket(f.ctx, f.user, TicketCreateInput{Subject: "test", Description: "test"})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Nil(t, ticket.OrderID)

	urgent, err := f.tickets.CreateTicket(f.ctx, f.user, TicketCreateInput{Subject: "down", Description: "site down", Priority: "urgent"})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityUrgent, urgent.Priority)
}

func TestCreateTicketValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.tickets.CreateTicket(f.ctx, f.user, TicketCreateInput{Subject: "  ", Description: "x"})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
	_, err = f.tickets.CreateTicket(f.ctx, f.user, TicketCreateInput{Subject: "x", Description: "x", Priority: "CRITICAL"})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}

func TestCreateTicketLinkedToOrder(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, f.user, f.addProduct(t, "A", 10), 1)

	ticket, err := f.tickets.CreateTicket(f.ctx, f.user, TicketCreateInput{Subject: "late", Description: "where is it", OrderID: &order.ID})
	require.NoError(t, err)
	require.NotNil(t, ticket.OrderID)
	assert.Equal(t, order.ID, *ticket.OrderID)

	_, err = f.tickets.CreateTicket(f.ctx, f.other, TicketCreateInput{Subject: "late", Description: "x", OrderID: &order.ID})
	assert.Equal(t, http.StatusNotFound, statusOf(err))

	empty := ""
	unlinked, err := f.tickets.CreateTicket(f.ctx, f.user, TicketCreateInput{Subject: "q", Description: "x", OrderID: &empty})
	require.NoError(t, err)
	assert.Nil(t, unlinked.OrderID)
}

func TestAddMessageRejectsBlankWithoutTouchingStore(t *testing.T) {
	f := newFixture(t)
	ticket := f.openTicket(t, f.user, "help")

	for _, msg := range []string{"", "   ", "\n\t"} {
		_, err := f.tickets.AddMessage(f.ctx, f.user, ticket.ID, TicketMessageInput{Message: msg})
		assert.Equal(t, http.StatusBadRequest, statusOf(err))
		_, err = f.tickets.AddMessage(f.ctx, f.admin, "missing", TicketMessageInput{Message: msg})
		assert.Equal(t, http.StatusBadRequest, statusOf(err))
	}
	assert.Zero(t, f.updates.creates)

	got, err := f.tickets.GetTicket(f.ctx, f.admin, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Updates)
}

func TestInternalUpdatesHiddenFromOwner(t *testing.T) {
	f := newFixture(t)
	ticket := f.openTicket(t, f.user, "billing")

	_, err := f.tickets.AddMessage(f.ctx, f.user, ticket.ID, TicketMessageInput{Message: "any news?"})
	require.NoError(t, err)
	_, err = f.tickets.AddMessage(f.ctx, f.admin, ticket.ID, TicketMessageInput{Message: "customer is VIP", IsInternal: true})
	require.NoError(t, err)
	reply, err := f.tickets.AddMessage(f.ctx, f.admin, ticket.ID, TicketMessageInput{Message: "  working on it  "})
	require.NoError(t, err)
	assert.Equal(t, "working on it", reply.Message)
	assert.Equal(t, f.admin.Name, reply.AuthorName)

	ownerView, err := f.tickets.GetTicket(f.ctx, f.user, ticket.ID)
	require.NoError(t, err)
	require.Len(t, ownerView.Updates, 2)
	for _, u := range ownerView.Updates {
		assert.False(t, u.IsInternal)
	}

	adminView, err := f.tickets.GetTicket(f.ctx, f.admin, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, adminView.Updates, 3)
}

func TestUserCannotPostInternalUpdate(t *testing.T) {
	f := newFixture(t)
	ticket := f.openTicket(t, f.user, "x")
	_, err := f.tickets.AddMessage(f.ctx, f.user, ticket.ID, TicketMessageInput{Message: "sneaky", IsInternal: true})
	assert.Equal(t, http.StatusForbidden, statusOf(err))
	assert.Zero(t, f.updates.creates)
}

func TestOtherUsersCannotSeeOrReplyToTicket(t *testing.T) {
	f := newFixture(t)
	ticket := f.openTicket(t, f.user, "private")

	_, err := f.tickets.GetTicket(f.ctx, f.other, ticket.ID)
	assert.Equal(t, http.StatusNotFound, statusOf(err))
	_, err = f.tickets.AddMessage(f.ctx, f.other, ticket.ID, TicketMessageInput{Message: "hi"})
	assert.Equal(t, http.StatusNotFound, statusOf(err))
}

func TestClosedTicketStillAcceptsMessages(t *testing.T) {
	f := newFixture(t)
	ticket := f.openTicket(t, f.user, "done")
	_, err := f.tickets.UpdateStatus(f.ctx, f.admin, ticket.ID, domain.TicketStatusClosed)
	require.NoError(t, err)

	f.now = f.now.Add(time.Hour)
	_, err = f.tickets.AddMessage(f.ctx, f.user, ticket.ID, TicketMessageInput{Message: "one more thing"})
	require.NoError(t, err)

	got, err := f.tickets.GetTicket(f.ctx, f.user, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, got.Status)
	assert.Equal(t, f.now, got.UpdatedAt)
}

func TestTicketStatusFullyConnected(t *testing.T) {
	f := newFixture(t)
	ticket := f.openTicket(t, f.user, "x")

	for _, from := range domain.TicketStatuses {
		for _, to := range domain.TicketStatuses {
			_, err := f.tickets.UpdateStatus(f.ctx, f.admin, ticket.ID, from)
			require.NoError(t, err)
			updated, err := f.tickets.UpdateStatus(f.ctx, f.admin, ticket.ID, to)
			require.NoError(t, err)
			assert.Equal(t, to, updated.Status)
		}
	}

	_, err := f.tickets.UpdateStatus(f.ctx, f.user, ticket.ID, domain.TicketStatusClosed)
	assert.Equal(t, http.StatusForbidden, statusOf(err))
	_, err = f.tickets.UpdateStatus(f.ctx, f.admin, ticket.ID, domain.TicketStatus("CANCELLED"))
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}

func TestListTicketsFilters(t *testing.T) {
	f := newFixture(t)
	a := f.openTicket(t, f.user, "Payment failed")
	_, err := f.tickets.CreateTicket(f.ctx, f.user, TicketCreateInput{Subject: "Logo colors", Description: "x", Priority: "HIGH"})
	require.NoError(t, err)
	c := f.openTicket(t, f.other, "Payment refund")
	_, err = f.tickets.UpdateStatus(f.ctx, f.admin, c.ID, domain.TicketStatusResolved)
	require.NoError(t, err)

	payment, err := f.tickets.ListTickets(f.ctx, f.admin, TicketFilter{Search: "payment"})
	require.NoError(t, err)
	assert.Len(t, payment, 2)

	open, err := f.tickets.ListTickets(f.ctx, f.admin, TicketFilter{Search: "payment", Status: "open"})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, a.ID, open[0].ID)

	high, err := f.tickets.ListTickets(f.ctx, f.admin, TicketFilter{Priority: "HIGH"})
	require.NoError(t, err)
	require.Len(t, high, 1)
	assert.Equal(t, "Logo colors", high[0].Subject)

	byOwner, err := f.tickets.ListTickets(f.ctx, f.admin, TicketFilter{Search: "REZA"})
	require.NoError(t, err)
	require.Len(t, byOwner, 1)
	assert.Equal(t, c.ID, byOwner[0].ID)

	own, err := f.tickets.ListTickets(f.ctx, f.other, TicketFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)

	_, err = f.tickets.ListTickets(f.ctx, f.admin, TicketFilter{Priority: "CRITICAL"})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}

func TestTicketNotifications(t *testing.T) {
	f := newFixture(t)
	ticket := f.openTicket(t, f.user, "help")

	_, err := f.tickets.AddMessage(f.ctx, f.user, ticket.ID, TicketMessageInput{Message: "ping"})
	require.NoError(t, err)
	_, err = f.tickets.AddMessage(f.ctx, f.admin, ticket.ID, TicketMessageInput{Message: "internal", IsInternal: true})
	require.NoError(t, err)
	_, err = f.tickets.AddMessage(f.ctx, f.admin, ticket.ID, TicketMessageInput{Message: strings.Repeat("پاسخ ", 100)})
	require.NoError(t, err)
	_, err = f.tickets.UpdateStatus(f.ctx, f.admin, ticket.ID, domain.TicketStatusResolved)
	require.NoError(t, err)

	inbox := f.inbox(t, f.user)
	require.Len(t, inbox, 3)
	assert.Equal(t, domain.NotificationTicketStatus, inbox[0].Type)
	assert.Contains(t, inbox[0].Message, domain.TicketStatusResolved.Label())
	assert.Equal(t, domain.NotificationTicketReply, inbox[1].Type)
	assert.Contains(t, inbox[1].Message, "...")
	assert.Equal(t, domain.NotificationTicketCreated, inbox[2].Type)
	assert.Equal(t, "/tickets/"+ticket.ID, inbox[2].Link)
}
