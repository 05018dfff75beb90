package email

import (
	"context"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
)

// Directory resolves the e-mail address of an account.
type Directory interface {
	Email(ctx context.Context, role domain.Role, id string) (string, error)
}

// SellerNotifier mails sellers about their listings.
type SellerNotifier struct {
	sender    EmailSender
	directory Directory
}

func NewSellerNotifier(sender EmailSender, directory Directory) *SellerNotifier {
	return &SellerNotifier{sender: sender, directory: directory}
}

func (n *SellerNotifier) NotifySeller(ctx context.Context, sellerID, subject, body string) error {
	addr, err := n.directory.Email(ctx, domain.RoleSeller, sellerID)
	if err != nil {
		return fmt.Errorf("resolve seller %s email: %w", sellerID, err)
	}
	return n.sender.Send(ctx, []string{addr}, subject, body)
}
