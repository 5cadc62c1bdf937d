package stakingtesting

import (
	"github.com/forestrie/go-nftstaking/authority"
	"github.com/forestrie/go-nftstaking/custody"
	"github.com/forestrie/go-nftstaking/identity"
)

type TestCallCounter struct {
	MethodCalls map[string]int
}

func (r *TestCallCounter) IncMethodCall(name string) int {
	if r.MethodCalls == nil {
		r.MethodCalls = make(map[string]int)
	}
	r.MethodCalls[name]++
	return r.MethodCalls[name]
}

func (r *TestCallCounter) Reset() {
	r.MethodCalls = make(map[string]int)
}

func (r *TestCallCounter) MethodCallCount(name string) int {
	return r.MethodCalls[name]
}

// Call is one recorded custody operation.
type Call struct {
	Method    string
	HoldingID identity.ID
	// Other is the new authority for ReassignAuthority and the destination
	// for Transfer and Close.
	Other     identity.ID
	Authority identity.ID
	Amount    uint64
}

// RecordingCustody forwards to a ledger, recording each call in order. A
// method named in Fail returns the mapped error without forwarding.
type RecordingCustody struct {
	TestCallCounter
	Inner *custody.Ledger
	Calls []Call
	Fail  map[string]error
}

func (r *RecordingCustody) record(c Call) error {
	r.IncMethodCall(c.Method)
	r.Calls = append(r.Calls, c)
	return r.Fail[c.Method]
}

// Methods returns the recorded method names in call order.
func (r *RecordingCustody) Methods() []string {
	out := make([]string, 0, len(r.Calls))
	for _, c := range r.Calls {
		out = append(out, c.Method)
	}
	return out
}

func (r *RecordingCustody) Inspect(holdingID identity.ID) (custody.Holding, error) {
	if err := r.record(Call{Method: "Inspect", HoldingID: holdingID}); err != nil {
		return custody.Holding{}, err
	}
	return r.Inner.Inspect(holdingID)
}

func (r *RecordingCustody) ReassignAuthority(holdingID, newAuthority, currentAuthority identity.ID) error {
	err := r.record(Call{Method: "ReassignAuthority", HoldingID: holdingID, Other: newAuthority, Authority: currentAuthority})
	if err != nil {
		return err
	}
	return r.Inner.ReassignAuthority(holdingID, newAuthority, currentAuthority)
}

func (r *RecordingCustody) Transfer(holdingID, destinationID identity.ID, c authority.Capability, amount uint64) error {
	err := r.record(Call{Method: "Transfer", HoldingID: holdingID, Other: destinationID, Authority: c.ID, Amount: amount})
	if err != nil {
		return err
	}
	return r.Inner.Transfer(holdingID, destinationID, c, amount)
}

func (r *RecordingCustody) Close(holdingID, destinationID identity.ID, c authority.Capability) error {
	err := r.record(Call{Method: "Close", HoldingID: holdingID, Other: destinationID, Authority: c.ID})
	if err != nil {
		return err
	}
	return r.Inner.Close(holdingID, destinationID, c)
}
