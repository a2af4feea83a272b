package harbour

// Sample harbour codes.
var (
	DKRNN Code = "DKRNN"
	DKROF Code = "DKROF"
	DKHLS Code = "DKHLS"
	DKFDH Code = "DKFDH"
	DEPUT Code = "DEPUT"
	DESAS Code = "DESAS"
	SEYST Code = "SEYST"
	SEHEL Code = "SEHEL"
	SEGOT Code = "SEGOT"
)

// Sample harbours.
var (
	Ronne         = &Harbour{DKRNN, "Rønne"}
	Rodby         = &Harbour{DKROF, "Rødby"}
	Helsingor     = &Harbour{DKHLS, "Helsingør"}
	Frederikshavn = &Harbour{DKFDH, "Frederikshavn"}
	Puttgarden    = &Harbour{DEPUT, "Puttgarden"}
	Sassnitz      = &Harbour{DESAS, "Sassnitz"}
	Ystad         = &Harbour{SEYST, "Ystad"}
	Helsingborg   = &Harbour{SEHEL, "Helsingborg"}
	Gothenburg    = &Harbour{SEGOT, "Gothenburg"}
)
