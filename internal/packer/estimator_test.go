package packer

import "testing"

func TestEstimatePriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		index         int
		totalIncluded int
		want          Priority
	}{
		{name: "FirstRankNextBlock", index: 0, totalIncluded: 10, want: PriorityHigh},
		{name: "LastIncludedRank", index: 9, totalIncluded: 10, want: PriorityHigh},
		{name: "SecondBlockBacklog", index: 10, totalIncluded: 10, want: PriorityMedium},
		{name: "ThirdBlockBacklog", index: 29, totalIncluded: 10, want: PriorityMedium},
		{name: "DeepBacklog", index: 30, totalIncluded: 10, want: PriorityLow},
		{name: "EmptyBlockMeansLow", index: 0, totalIncluded: 0, want: PriorityLow},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := EstimatePriority(tc.index, tc.totalIncluded); got != tc.want {
				t.Fatalf("EstimatePriority(%d, %d) = %s, want %s", tc.index, tc.totalIncluded, got, tc.want)
			}
		})
	}
}

func TestPriorityString(t *testing.T) {
	t.Parallel()

	if PriorityHigh.String() != "high" || PriorityMedium.String() != "medium" || PriorityLow.String() != "low" {
		t.Fatalf("unexpected priority labels: %s/%s/%s", PriorityHigh, PriorityMedium, PriorityLow)
	}
}
