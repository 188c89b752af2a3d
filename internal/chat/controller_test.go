package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sanket3212/LLM-food-order/internal/models"
)

type fakeBackend struct {
	healthy    bool
	healthErr  error
	menu       []models.MenuItem
	menuErr    error
	cart       models.CartState
	cartErr    error
	reply      *models.OrderReply
	processErr error
	clearErr   error

	processCalls int
	lastMessage  string
}

func (f *fakeBackend) Health(ctx context.Context) (bool, error) {
	return f.healthy, f.healthErr
}

func (f *fakeBackend) Menu(ctx context.Context) ([]models.MenuItem, error) {
	return f.menu, f.menuErr
}

func (f *fakeBackend) Cart(ctx context.Context) (*models.CartState, error) {
	if f.cartErr != nil {
		return nil, f.cartErr
	}
	return &f.cart, nil
}

func (f *fakeBackend) ProcessOrder(ctx context.Context, message string) (*models.OrderReply, error) {
	f.processCalls++
	f.lastMessage = message
	if f.processErr != nil {
		return nil, f.processErr
	}
	return f.reply, nil
}

func (f *fakeBackend) ClearCart(ctx context.Context) error {
	return f.clearErr
}

type fakeSink struct {
	issueID int
	err     error
	calls   int
	last    models.TicketRequest
}

func (f *fakeSink) CreateTicket(ctx context.Context, order models.TicketRequest) (int, error) {
	f.calls++
	f.last = order
	if f.err != nil {
		return 0, f.err
	}
	return f.issueID, nil
}

func newConnectedSession(t *testing.T, backend *fakeBackend, sink *fakeSink) *Session {
	t.Helper()
	backend.healthy = true
	s := NewSession("test-session", backend, sink, 0)
	require.True(t, s.CheckConnectivity(context.Background()))
	return s
}

func messagesBySender(view models.ChatView, sender models.Sender) []models.ChatMessage {
	var out []models.ChatMessage
	for _, msg := range view.Transcript {
		if msg.Sender == sender {
			out = append(out, msg)
		}
	}
	return out
}

func TestNewSessionStartsWithWelcome(t *testing.T) {
	s := NewSession("s", &fakeBackend{}, &fakeSink{}, 0)

	view := s.View()
	require.Len(t, view.Transcript, 1)
	assert.Equal(t, models.SenderAssistant, view.Transcript[0].Sender)
	assert.Equal(t, WelcomeText, view.Transcript[0].Text)
	assert.Empty(t, view.Cart)
	assert.Zero(t, view.Total)
	assert.False(t, view.Connected)
}

func TestSubmitReplacesCartAndTotal(t *testing.T) {
	backend := &fakeBackend{
		reply: &models.OrderReply{
			Message: "Added 2 Chicken Sandwich",
			Intent:  models.IntentAddItem,
			Items:   []models.CartItem{{Name: "Chicken Sandwich", Price: 8.5, Qty: 2}},
			Total:   17.0,
		},
	}
	s := newConnectedSession(t, backend, &fakeSink{})

	require.NoError(t, s.Submit(context.Background(), "I want 2 chicken sandwiches"))

	view := s.View()
	require.Len(t, view.Cart, 1)
	assert.Equal(t, "Chicken Sandwich", view.Cart[0].Name)
	assert.Equal(t, 2, view.Cart[0].Qty)
	assert.Equal(t, 17.0, view.Total)
	assert.False(t, view.Busy)

	users := messagesBySender(view, models.SenderUser)
	require.Len(t, users, 1)
	assert.Equal(t, "I want 2 chicken sandwiches", users[0].Text)

	assistants := messagesBySender(view, models.SenderAssistant)
	require.Len(t, assistants, 2) // welcome + reply
	assert.Equal(t, "Added 2 Chicken Sandwich", assistants[1].Text)
}

func TestSubmitCartFieldWinsOverItems(t *testing.T) {
	backend := &fakeBackend{
		reply: &models.OrderReply{
			Message: "ok",
			Intent:  models.IntentAddItem,
			Cart:    []models.CartItem{{Name: "Fries", Price: 3.5, Qty: 1}},
			Items:   []models.CartItem{{Name: "Stale", Price: 1, Qty: 9}},
			Total:   3.5,
		},
	}
	s := newConnectedSession(t, backend, &fakeSink{})

	require.NoError(t, s.Submit(context.Background(), "fries"))

	view := s.View()
	require.Len(t, view.Cart, 1)
	assert.Equal(t, "Fries", view.Cart[0].Name)
}

func TestSubmitEmptyTextSendsNothing(t *testing.T) {
	backend := &fakeBackend{}
	s := newConnectedSession(t, backend, &fakeSink{})
	before := len(s.View().Transcript)

	assert.ErrorIs(t, s.Submit(context.Background(), ""), ErrEmptyMessage)
	assert.ErrorIs(t, s.Submit(context.Background(), "   \n\t"), ErrEmptyMessage)

	assert.Zero(t, backend.processCalls)
	assert.Len(t, s.View().Transcript, before)
}

func TestSubmitFailureLeavesCartUntouched(t *testing.T) {
	backend := &fakeBackend{
		reply: &models.OrderReply{
			Message: "ok",
			Intent:  models.IntentAddItem,
			Items:   []models.CartItem{{Name: "Fries", Price: 3.5, Qty: 2}},
			Total:   7.0,
		},
	}
	s := newConnectedSession(t, backend, &fakeSink{})
	require.NoError(t, s.Submit(context.Background(), "2 fries"))

	backend.processErr = errors.New("order backend returned status 500: boom")
	require.NoError(t, s.Submit(context.Background(), "and a pizza"))

	view := s.View()
	require.Len(t, view.Cart, 1)
	assert.Equal(t, "Fries", view.Cart[0].Name)
	assert.Equal(t, 7.0, view.Total)
	assert.False(t, view.Busy)

	systems := messagesBySender(view, models.SenderSystem)
	require.Len(t, systems, 1)
	assert.Contains(t, systems[0].Text, "Failed to process order")
	assert.Contains(t, systems[0].Text, "boom")
}

func TestSubmitWhenDisconnected(t *testing.T) {
	backend := &fakeBackend{healthy: false}
	s := NewSession("s", backend, &fakeSink{}, 0)

	err := s.Submit(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrBackendDown)
	assert.Zero(t, backend.processCalls)

	systems := messagesBySender(s.View(), models.SenderSystem)
	require.Len(t, systems, 1)
	assert.Contains(t, systems[0].Text, "Backend is not available")
}

func TestSubmitAfterConfirmationRejected(t *testing.T) {
	backend := &fakeBackend{
		reply: &models.OrderReply{
			Message:      "done",
			Intent:       models.IntentFinalizeOrder,
			Cart:         []models.CartItem{{Name: "Fries", Price: 3.5, Qty: 1}},
			Total:        3.5,
			OrderSummary: map[string]interface{}{"total": 3.5},
		},
	}
	s := newConnectedSession(t, backend, &fakeSink{issueID: 1})
	require.NoError(t, s.Submit(context.Background(), "finalize"))
	s.WaitTickets()

	before := len(s.View().Transcript)
	assert.ErrorIs(t, s.Submit(context.Background(), "one more pizza"), ErrOrderConfirmed)
	assert.Len(t, s.View().Transcript, before)
}

func TestSubmitMenuIntentAppendsListing(t *testing.T) {
	backend := &fakeBackend{
		reply: &models.OrderReply{
			Message: "Here's our menu!",
			Intent:  models.IntentAskMenu,
			Menu: []models.MenuItem{
				{Name: "Fries", Price: 3.5, Description: "Crispy golden fries"},
			},
		},
	}
	s := newConnectedSession(t, backend, &fakeSink{})

	require.NoError(t, s.Submit(context.Background(), "Show me the menu"))

	assistants := messagesBySender(s.View(), models.SenderAssistant)
	last := assistants[len(assistants)-1].Text
	assert.Contains(t, last, "Here's our menu!")
	assert.Contains(t, last, "• Fries - $3.50 - Crispy golden fries")
}

func TestSubmitViewCartIntentAppendsListing(t *testing.T) {
	backend := &fakeBackend{
		reply: &models.OrderReply{
			Message: "Here's your cart!",
			Intent:  models.IntentViewCart,
			Cart:    []models.CartItem{{Name: "Fries", Price: 3.5, Qty: 2}},
			Total:   7.0,
		},
	}
	s := newConnectedSession(t, backend, &fakeSink{})

	require.NoError(t, s.Submit(context.Background(), "What's in my cart?"))

	assistants := messagesBySender(s.View(), models.SenderAssistant)
	last := assistants[len(assistants)-1].Text
	assert.Contains(t, last, "• 2x Fries - $3.50")
}

func TestSubmitUnknownIntentIsPassthrough(t *testing.T) {
	backend := &fakeBackend{
		reply: &models.OrderReply{
			Message: "Sorry, I did not get that.",
			Intent:  "weird_new_intent",
		},
	}
	s := newConnectedSession(t, backend, &fakeSink{})

	require.NoError(t, s.Submit(context.Background(), "blorp"))

	assistants := messagesBySender(s.View(), models.SenderAssistant)
	assert.Equal(t, "Sorry, I did not get that.", assistants[len(assistants)-1].Text)
	assert.Empty(t, s.View().Cart)
}

func TestSubmitEmptyReplyMessageGetsDefault(t *testing.T) {
	backend := &fakeBackend{reply: &models.OrderReply{Intent: models.IntentUnknown}}
	s := newConnectedSession(t, backend, &fakeSink{})

	require.NoError(t, s.Submit(context.Background(), "hm"))

	assistants := messagesBySender(s.View(), models.SenderAssistant)
	assert.Equal(t, "I've processed your request!", assistants[len(assistants)-1].Text)
}

func TestFinalizeConfirmsAndCapturesSnapshot(t *testing.T) {
	backend := &fakeBackend{
		reply: &models.OrderReply{
			Message:      "Thanks for your order.",
			Intent:       models.IntentFinalizeOrder,
			Cart:         []models.CartItem{{Name: "Pizza", Price: 11.0, Qty: 2}},
			Total:        22.0,
			OrderSummary: map[string]interface{}{"total": 22.0},
		},
	}
	sink := &fakeSink{issueID: 77}
	s := newConnectedSession(t, backend, sink)

	require.NoError(t, s.Submit(context.Background(), "I want to finalize my order"))
	s.WaitTickets()

	view := s.View()
	assert.True(t, view.OrderConfirmed)
	assert.True(t, strings.HasPrefix(view.OrderNumber, "ORD-"))

	snap, ok := s.Snapshot()
	require.True(t, ok)
	assert.Equal(t, view.OrderNumber, snap.OrderNumber)
	assert.Equal(t, 22.0, snap.Total)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "Pizza", snap.Items[0].Name)

	assistants := messagesBySender(view, models.SenderAssistant)
	last := assistants[len(assistants)-1].Text
	assert.Contains(t, last, "Order confirmed! Thanks for your order.")
	assert.Contains(t, last, "Order Number: "+view.OrderNumber)

	// Ticket task ran with the snapshot contents
	assert.Equal(t, 1, sink.calls)
	assert.Equal(t, view.OrderNumber, sink.last.OrderNumber)
	assert.Equal(t, 22.0, sink.last.Total)
	assert.Contains(t, sink.last.Items, "• 2x Pizza - $11.00 each = $22.00")

	systems := messagesBySender(view, models.SenderSystem)
	require.Len(t, systems, 1)
	assert.Contains(t, systems[0].Text, "Ticket ID: 77")
}

func TestFinalizeConfirmsDespiteTicketFailure(t *testing.T) {
	backend := &fakeBackend{
		reply: &models.OrderReply{
			Message:      "done",
			Intent:       models.IntentFinalizeOrder,
			Cart:         []models.CartItem{{Name: "Fries", Price: 3.5, Qty: 1}},
			Total:        3.5,
			OrderSummary: map[string]interface{}{"total": 3.5},
		},
	}
	sink := &fakeSink{err: errors.New("mantis returned status 500: nope")}
	s := newConnectedSession(t, backend, sink)

	require.NoError(t, s.Submit(context.Background(), "finalize"))
	s.WaitTickets()

	view := s.View()
	assert.True(t, view.OrderConfirmed)
	_, ok := s.Snapshot()
	assert.True(t, ok)

	systems := messagesBySender(view, models.SenderSystem)
	require.Len(t, systems, 1)
	assert.Contains(t, systems[0].Text, "Failed to create order ticket")
}

func TestFinalizeWithoutSummaryDoesNotConfirm(t *testing.T) {
	backend := &fakeBackend{
		reply: &models.OrderReply{
			Message: "Your cart is empty. Add something before finalizing!",
			Intent:  models.IntentFinalizeOrder,
		},
	}
	sink := &fakeSink{}
	s := newConnectedSession(t, backend, sink)

	require.NoError(t, s.Submit(context.Background(), "finalize"))
	s.WaitTickets()

	view := s.View()
	assert.False(t, view.OrderConfirmed)
	assert.Zero(t, sink.calls)
	_, ok := s.Snapshot()
	assert.False(t, ok)
}

func TestClearCartSuccess(t *testing.T) {
	backend := &fakeBackend{
		reply: &models.OrderReply{
			Message: "ok",
			Intent:  models.IntentAddItem,
			Items:   []models.CartItem{{Name: "Fries", Price: 3.5, Qty: 2}},
			Total:   7.0,
		},
	}
	s := newConnectedSession(t, backend, &fakeSink{})
	require.NoError(t, s.Submit(context.Background(), "2 fries"))

	require.NoError(t, s.ClearCart(context.Background()))

	view := s.View()
	assert.Empty(t, view.Cart)
	assert.Zero(t, view.Total)

	systems := messagesBySender(view, models.SenderSystem)
	require.Len(t, systems, 1)
	assert.Equal(t, "Cart cleared successfully!", systems[0].Text)
}

func TestClearCartFailureLeavesState(t *testing.T) {
	backend := &fakeBackend{
		reply: &models.OrderReply{
			Message: "ok",
			Intent:  models.IntentAddItem,
			Items:   []models.CartItem{{Name: "Fries", Price: 3.5, Qty: 2}},
			Total:   7.0,
		},
	}
	s := newConnectedSession(t, backend, &fakeSink{})
	require.NoError(t, s.Submit(context.Background(), "2 fries"))

	backend.clearErr = errors.New("connection refused")
	require.Error(t, s.ClearCart(context.Background()))

	view := s.View()
	require.Len(t, view.Cart, 1)
	assert.Equal(t, 7.0, view.Total)

	systems := messagesBySender(view, models.SenderSystem)
	require.Len(t, systems, 1)
	assert.Equal(t, "Failed to clear cart.", systems[0].Text)
}

func TestCheckConnectivity(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		s := NewSession("s", &fakeBackend{healthy: true}, &fakeSink{}, 0)
		assert.True(t, s.CheckConnectivity(context.Background()))
		assert.True(t, s.View().Connected)
		assert.Empty(t, messagesBySender(s.View(), models.SenderSystem))
	})

	t.Run("unhealthy status", func(t *testing.T) {
		s := NewSession("s", &fakeBackend{healthy: false}, &fakeSink{}, 0)
		assert.False(t, s.CheckConnectivity(context.Background()))
		assert.False(t, s.View().Connected)
		assert.Empty(t, messagesBySender(s.View(), models.SenderSystem))
	})

	t.Run("probe error", func(t *testing.T) {
		s := NewSession("s", &fakeBackend{healthErr: errors.New("dial tcp: refused")}, &fakeSink{}, 0)
		assert.False(t, s.CheckConnectivity(context.Background()))

		systems := messagesBySender(s.View(), models.SenderSystem)
		require.Len(t, systems, 1)
		assert.Contains(t, systems[0].Text, "Unable to connect to backend")
	})
}

func TestResetForNewOrderKeepsTranscript(t *testing.T) {
	backend := &fakeBackend{
		reply: &models.OrderReply{
			Message:      "done",
			Intent:       models.IntentFinalizeOrder,
			Cart:         []models.CartItem{{Name: "Fries", Price: 3.5, Qty: 1}},
			Total:        3.5,
			OrderSummary: map[string]interface{}{"total": 3.5},
		},
	}
	s := newConnectedSession(t, backend, &fakeSink{issueID: 5})
	require.NoError(t, s.Submit(context.Background(), "finalize"))
	s.WaitTickets()

	before := len(s.View().Transcript)
	s.ResetForNewOrder()

	view := s.View()
	assert.False(t, view.OrderConfirmed)
	assert.Empty(t, view.OrderNumber)
	assert.Len(t, view.Transcript, before)
	require.Len(t, view.Cart, 1) // live cart survives the reset

	_, ok := s.Snapshot()
	assert.False(t, ok)
}

func TestSnapshotSurvivesClearCart(t *testing.T) {
	backend := &fakeBackend{
		reply: &models.OrderReply{
			Message:      "done",
			Intent:       models.IntentFinalizeOrder,
			Cart:         []models.CartItem{{Name: "Pizza", Price: 11.0, Qty: 1}},
			Total:        11.0,
			OrderSummary: map[string]interface{}{"total": 11.0},
		},
	}
	s := newConnectedSession(t, backend, &fakeSink{issueID: 2})
	require.NoError(t, s.Submit(context.Background(), "finalize"))
	s.WaitTickets()

	require.NoError(t, s.ClearCart(context.Background()))

	snap, ok := s.Snapshot()
	require.True(t, ok)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 11.0, snap.Total)
}

func TestBootstrap(t *testing.T) {
	t.Run("loads menu and cart", func(t *testing.T) {
		backend := &fakeBackend{
			healthy: true,
			menu:    []models.MenuItem{{Name: "Fries", Price: 3.5}},
			cart: models.CartState{
				Items: []models.CartItem{{Name: "Fries", Price: 3.5, Qty: 1}},
				Total: 3.5,
			},
		}
		s := NewSession("s", backend, &fakeSink{}, 0)
		s.Bootstrap(context.Background())

		view := s.View()
		assert.True(t, view.Connected)
		assert.Equal(t, 3.5, view.Total)
		require.Len(t, view.Cart, 1)
		require.Len(t, s.Menu(), 1)
	})

	t.Run("menu failure is reported, cart failure is silent", func(t *testing.T) {
		backend := &fakeBackend{
			healthy: true,
			menuErr: errors.New("menu fetch failed"),
			cartErr: errors.New("cart fetch failed"),
		}
		s := NewSession("s", backend, &fakeSink{}, 0)
		s.Bootstrap(context.Background())

		systems := messagesBySender(s.View(), models.SenderSystem)
		require.Len(t, systems, 1)
		assert.Contains(t, systems[0].Text, "Failed to load menu")
	})
}
