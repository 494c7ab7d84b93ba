package soap

import (
	"bytes"
	"encoding/xml"

	"chequeprint/internal/checkbook/models"
)

const (
	envelopeNS     = "http://schemas.xmlsoap.org/soap/envelope/"
	serviceNS      = "urn:corebanking:checkbook"
	queryAction    = serviceNS + ":QueryCheckbook"
	contentTypeXML = "text/xml; charset=utf-8"
)

type requestEnvelope struct {
	XMLName xml.Name    `xml:"soap:Envelope"`
	SoapNS  string      `xml:"xmlns:soap,attr"`
	Body    requestBody `xml:"soap:Body"`
}

type requestBody struct {
	Query queryRequest `xml:"QueryCheckbook"`
}

type queryRequest struct {
	XMLNS         string `xml:"xmlns,attr"`
	AccountNumber string `xml:"AccountNumber"`
}

func encodeQuery(accountNumber string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	if err := enc.Encode(requestEnvelope{
		SoapNS: envelopeNS,
		Body: requestBody{Query: queryRequest{
			XMLNS:         serviceNS,
			AccountNumber: accountNumber,
		}},
	}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Response elements are matched by local name so any namespace prefix works.
type responseEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Fault    *fault         `xml:"Fault"`
		Response *queryResponse `xml:"QueryCheckbookResponse"`
	} `xml:"Body"`
}

type fault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
}

type queryResponse struct {
	Result *wireResult `xml:"Result"`
}

type wireResult struct {
	AccountNumber     string       `xml:"AccountNumber"`
	AccountBranch     string       `xml:"AccountBranch"`
	CustomerName      string       `xml:"CustomerName"`
	FirstChequeNumber string       `xml:"FirstChequeNumber"`
	ChequeLeaves      string       `xml:"ChequeLeaves"`
	RequestStatus     string       `xml:"RequestStatus"`
	CheckBookType     string       `xml:"CheckBookType"`
	DeliveryMode      string       `xml:"DeliveryMode"`
	LanguageCode      string       `xml:"LanguageCode"`
	ChequeStatuses    []wireStatus `xml:"ChequeStatuses>ChequeStatus"`
}

type wireStatus struct {
	ChequeBookNumber string `xml:"ChequeBookNumber"`
	ChequeNumber     string `xml:"ChequeNumber"`
	Status           string `xml:"Status"`
}

func (w *wireResult) toModel() *models.ExternalCheckbookResult {
	out := &models.ExternalCheckbookResult{
		AccountNumber:     w.AccountNumber,
		AccountBranch:     w.AccountBranch,
		CustomerName:      w.CustomerName,
		FirstChequeNumber: w.FirstChequeNumber,
		ChequeLeaves:      w.ChequeLeaves,
		RequestStatus:     w.RequestStatus,
		CheckBookType:     w.CheckBookType,
		DeliveryMode:      w.DeliveryMode,
		LanguageCode:      w.LanguageCode,
		ChequeStatuses:    make([]models.ExternalChequeStatus, len(w.ChequeStatuses)),
	}
	for i, s := range w.ChequeStatuses {
		out.ChequeStatuses[i] = models.ExternalChequeStatus{
			ChequeBookNumber: s.ChequeBookNumber,
			ChequeNumber:     s.ChequeNumber,
			Status:           s.Status,
		}
	}
	return out
}
