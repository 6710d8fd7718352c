package mr01

// DefaultMacropayment is the reference value of M, the macropayment unit:
// the only amount ever actually moved on the ledger. All participants in a
// deployment must agree on the same value; changing it breaks payability
// across wallets that disagree.
const DefaultMacropayment = 10
