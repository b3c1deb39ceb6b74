package domain

import "testing"

func TestOrderValidateParty(t *testing.T) {
	user := "u1"
	guest := &GuestInfo{Email: "g@example.com", FirstName: "G", LastName: "Uest"}

	cases := []struct {
		name    string
		order   Order
		wantErr bool
	}{
		{"registered", Order{UserID: &user}, false},
		{"guest", Order{IsGuest: true, GuestInfo: guest}, false},
		{"both", Order{IsGuest: true, UserID: &user, GuestInfo: guest}, true},
		{"neither", Order{}, true},
		{"guest without info", Order{IsGuest: true}, true},
		{"registered with guest info", Order{UserID: &user, GuestInfo: guest}, true},
	}
	for _, tc := range cases {
		err := tc.order.ValidateParty()
		if (err != nil) != tc.wantErr {
			t.Errorf("%s: got err=%v, wantErr=%v", tc.name, err, tc.wantErr)
		}
	}
}

func TestOrderRecomputeTotal(t *testing.T) {
	o := Order{Items: []OrderItem{
		{Quantity: 3, PriceCents: 900},
		{Quantity: 1, PriceCents: 150},
	}}
	o.RecomputeTotal()
	if o.TotalCents != 2850 {
		t.Fatalf("expected total 2850, got %d", o.TotalCents)
	}
}

func TestCartRecomputeTotal(t *testing.T) {
	c := Cart{Items: []CartItem{
		{Quantity: 2, PriceAtAddCents: 500},
		{Quantity: 1, PriceAtAddCents: 250},
	}}
	c.RecomputeTotal()
	if c.TotalCents != 1250 {
		t.Fatalf("expected total 1250, got %d", c.TotalCents)
	}
}
