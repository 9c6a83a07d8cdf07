package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"sync"
	"time"

	"github.com/expendio/foh-app/models"
	"github.com/expendio/foh-app/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	otpTTL        = 5 * time.Minute
	minimumAge    = 18
	sweepInterval = 1 * time.Minute
)

// StartLoginRequest is what the self-check-in form submits before the party
// is allowed to open a tab.
type StartLoginRequest struct {
	Name           string
	Email          string
	Phone          string
	BirthDate      time.Time
	MarketingOptIn bool
}

type pendingOTP struct {
	customerID uint
	contact    string
	code       string
	expiresAt  time.Time
}

// OTPService runs the passcode-based customer login: issue a short-lived
// code bound to an opaque request id, verify it once, hand out a session
// token. Expired entries are swept periodically instead of leaking.
type OTPService struct {
	DB *gorm.DB

	mu      sync.Mutex
	pending map[string]pendingOTP

	Now      func() time.Time // injectable clock for expiry tests
	StopChan chan struct{}
}

func NewOTPService(db *gorm.DB) *OTPService {
	return &OTPService{
		DB:       db,
		pending:  make(map[string]pendingOTP),
		Now:      time.Now,
		StopChan: make(chan struct{}),
	}
}

// StartLogin validates the applicant, upserts the customer record by
// phone/email and issues a passcode. Returns the opaque request id the
// client must echo back on verification.
func (s *OTPService) StartLogin(req StartLoginRequest) (string, error) {
	if req.Phone == "" && req.Email == "" {
		return "", ErrContactRequired
	}
	if AgeOn(req.BirthDate, s.Now()) < minimumAge {
		return "", ErrUnderage
	}

	birth := req.BirthDate
	customer, err := resolveCustomer(s.DB, CustomerInfo{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		BirthDate:      &birth,
		MarketingOptIn: req.MarketingOptIn,
	})
	if err != nil {
		return "", err
	}

	contact := req.Phone
	if contact == "" {
		contact = req.Email
	}

	requestID := uuid.NewString()
	code := generateCode()

	s.mu.Lock()
	s.pending[requestID] = pendingOTP{
		customerID: customer.ID,
		contact:    contact,
		code:       code,
		expiresAt:  s.Now().Add(otpTTL),
	}
	s.mu.Unlock()

	// Delivery to the contact channel happens out of band; in development
	// the code lands in the log.
	utils.InfoLogger.Printf("OTP issued for customer %d via %s (request=%s)", customer.ID, contact, requestID)
	return requestID, nil
}

// VerifyOTP checks the code for a pending request. A wrong code leaves the
// entry intact so a retry can still succeed before expiry; a correct code
// consumes the entry, so a request id never verifies twice.
func (s *OTPService) VerifyOTP(requestID, code string) (string, *models.Customer, error) {
	s.mu.Lock()
	entry, ok := s.pending[requestID]
	if !ok || s.Now().After(entry.expiresAt) {
		delete(s.pending, requestID)
		s.mu.Unlock()
		return "", nil, ErrOTPExpired
	}
	if entry.code != code {
		s.mu.Unlock()
		return "", nil, ErrOTPIncorrect
	}
	delete(s.pending, requestID)
	s.mu.Unlock()

	var customer models.Customer
	if err := s.DB.First(&customer, entry.customerID).Error; err != nil {
		return "", nil, err
	}

	token, err := utils.GenerateToken(customer.ID, utils.RoleCustomer)
	if err != nil {
		return "", nil, err
	}

	utils.InfoLogger.Printf("Customer %d authenticated via OTP", customer.ID)
	return token, &customer, nil
}

// PendingCount reports outstanding OTP requests.
func (s *OTPService) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// StartSweeper purges expired entries on an interval.
func (s *OTPService) StartSweeper() {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-s.StopChan:
				return
			}
		}
	}()
}

func (s *OTPService) Stop() {
	close(s.StopChan)
}

// Sweep drops every expired pending entry.
func (s *OTPService) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.Now()
	for id, entry := range s.pending {
		if now.After(entry.expiresAt) {
			delete(s.pending, id)
		}
	}
}

// AgeOn computes completed years between birth and the reference date: the
// year difference, minus one when the reference month/day precedes the
// birthday.
func AgeOn(birth, on time.Time) int {
	age := on.Year() - birth.Year()
	if on.Month() < birth.Month() || (on.Month() == birth.Month() && on.Day() < birth.Day()) {
		age--
	}
	return age
}

// generateCode returns a six-digit passcode. OTP_TEST_CODE pins it so
// development builds and the test suite do not need an SMS channel.
func generateCode() string {
	if test := os.Getenv("OTP_TEST_CODE"); test != "" {
		return test
	}
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand failure means something is deeply wrong with the host.
		panic(err)
	}
	return fmt.Sprintf("%06d", n.Int64())
}
