// Package prompt asks the operator for filter criteria on a terminal.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"babylon/salesanalytics/model"
	"babylon/salesanalytics/validate"
)

// AskCriteria shows the available filter options and reads the criteria from
// in. Blank answers skip a filter and invalid amounts are reported and ignored.
// Reaching the end of in is treated as a blank answer.
func AskCriteria(in io.Reader, out io.Writer, opts validate.Options, currencySymbol string) model.FilterCriteria {
	scanner := bufio.NewScanner(in)
	ask := func(question string) string {
		fmt.Fprint(out, question)
		if !scanner.Scan() {
			return ""
		}
		return strings.TrimSpace(scanner.Text())
	}

	fmt.Fprintln(out, "Filter Options Available:")
	if opts.HasData {
		fmt.Fprintf(out, "Regions: %s\n", strings.Join(opts.Regions, ", "))
		fmt.Fprintf(out, "Amount Range: %s%s - %s%s\n",
			currencySymbol, wholeAmount(opts.MinAmount), currencySymbol, wholeAmount(opts.MaxAmount))
	}
	fmt.Fprintln(out)

	var criteria model.FilterCriteria
	if strings.ToLower(ask("Do you want to filter data? (y/n): ")) != "y" {
		return criteria
	}

	fmt.Fprintln(out, "--- Enter Filter Criteria (Press Enter to skip) ---")
	criteria.Region = ask("Enter Region: ")
	criteria.MinAmount = askAmount(out, ask, "Min Amount")
	criteria.MaxAmount = askAmount(out, ask, "Max Amount")
	fmt.Fprintln(out)

	return criteria
}

func askAmount(out io.Writer, ask func(string) string, label string) *decimal.Decimal {
	answer := ask(label + ": ")
	if answer == "" {
		return nil
	}

	amount, err := decimal.NewFromString(answer)
	if err != nil {
		fmt.Fprintf(out, "Invalid number for %s. Ignoring.\n", label)
		return nil
	}

	return &amount
}

func wholeAmount(d decimal.Decimal) string {
	return humanize.BigComma(d.Round(0).BigInt())
}
