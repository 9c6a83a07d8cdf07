package services

import (
	"testing"
	"time"

	"github.com/expendio/foh-app/models"
	"github.com/expendio/foh-app/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOTP(t *testing.T) *OTPService {
	t.Helper()
	t.Setenv("OTP_TEST_CODE", "123456")
	return NewOTPService(setupTestDB(t))
}

func adultRequest() StartLoginRequest {
	return StartLoginRequest{
		Name:      "Ana García",
		Email:     "ana.garcia@email.com",
		Phone:     "+52-555-0101",
		BirthDate: time.Now().AddDate(-30, 0, 0),
	}
}

func TestStartLoginCreatesCustomer(t *testing.T) {
	svc := newOTP(t)

	requestID, err := svc.StartLogin(adultRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, requestID)

	var customer models.Customer
	require.NoError(t, svc.DB.Where("email = ?", "ana.garcia@email.com").First(&customer).Error)
	require.NotNil(t, customer.Phone)
	assert.Equal(t, "+52-555-0101", *customer.Phone)
	assert.NotNil(t, customer.BirthDate)
}

func TestStartLoginReusesCustomerByPhone(t *testing.T) {
	svc := newOTP(t)

	_, err := svc.StartLogin(adultRequest())
	require.NoError(t, err)

	// Same phone, different email: no second record.
	req := adultRequest()
	req.Email = "otra@email.com"
	_, err = svc.StartLogin(req)
	require.NoError(t, err)

	var count int64
	svc.DB.Model(&models.Customer{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestStartLoginRequiresContact(t *testing.T) {
	svc := newOTP(t)

	req := adultRequest()
	req.Email = ""
	req.Phone = ""
	_, err := svc.StartLogin(req)
	assert.ErrorIs(t, err, ErrContactRequired)
}

func TestAgeGate(t *testing.T) {
	svc := newOTP(t)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }

	// 17 years and 364 days: rejected.
	req := adultRequest()
	req.BirthDate = now.AddDate(-18, 0, 1)
	_, err := svc.StartLogin(req)
	assert.ErrorIs(t, err, ErrUnderage)

	// Exactly 18 today: accepted.
	req.BirthDate = now.AddDate(-18, 0, 0)
	_, err = svc.StartLogin(req)
	assert.NoError(t, err)
}

func TestAgeOn(t *testing.T) {
	on := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 18, AgeOn(time.Date(2008, 8, 28, 0, 0, 0, 0, time.UTC), on))
	assert.Equal(t, 17, AgeOn(time.Date(2008, 8, 29, 0, 0, 0, 0, time.UTC), on))
	assert.Equal(t, 17, AgeOn(time.Date(2008, 9, 1, 0, 0, 0, 0, time.UTC), on))
	assert.Equal(t, 18, AgeOn(time.Date(2008, 7, 31, 0, 0, 0, 0, time.UTC), on))
}

func TestVerifyOTPSuccess(t *testing.T) {
	svc := newOTP(t)

	requestID, err := svc.StartLogin(adultRequest())
	require.NoError(t, err)

	token, customer, err := svc.VerifyOTP(requestID, "123456")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	require.NotNil(t, customer)

	claims, err := utils.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, utils.RoleCustomer, claims.Role)
	assert.Equal(t, customer.ID, claims.SubjectID)

	// A request id never verifies twice.
	_, _, err = svc.VerifyOTP(requestID, "123456")
	assert.ErrorIs(t, err, ErrOTPExpired)
}

func TestVerifyOTPWrongCodeKeepsEntry(t *testing.T) {
	svc := newOTP(t)

	requestID, err := svc.StartLogin(adultRequest())
	require.NoError(t, err)

	_, _, err = svc.VerifyOTP(requestID, "000000")
	assert.ErrorIs(t, err, ErrOTPIncorrect)

	// The correct code still works after a bad attempt.
	_, _, err = svc.VerifyOTP(requestID, "123456")
	assert.NoError(t, err)
}

func TestVerifyOTPExpired(t *testing.T) {
	svc := newOTP(t)

	requestID, err := svc.StartLogin(adultRequest())
	require.NoError(t, err)

	svc.Now = func() time.Time { return time.Now().Add(otpTTL + time.Second) }

	// Expiry wins even with the right code.
	_, _, err = svc.VerifyOTP(requestID, "123456")
	assert.ErrorIs(t, err, ErrOTPExpired)
}

func TestVerifyOTPUnknownRequest(t *testing.T) {
	svc := newOTP(t)
	_, _, err := svc.VerifyOTP("no-such-request", "123456")
	assert.ErrorIs(t, err, ErrOTPExpired)
}

func TestSweepPurgesExpiredEntries(t *testing.T) {
	svc := newOTP(t)

	_, err := svc.StartLogin(adultRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, svc.PendingCount())

	svc.Now = func() time.Time { return time.Now().Add(otpTTL + time.Second) }
	svc.Sweep()
	assert.Zero(t, svc.PendingCount())
}
